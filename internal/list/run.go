package list

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/twig-dev/twig/internal/forge"
	"github.com/twig-dev/twig/internal/log"
)

// ProgressMode controls whether rows repaint in place while loading.
type ProgressMode int

const (
	// ProgressAuto repaints in place when stdout is an interactive
	// terminal and the output is a table.
	ProgressAuto ProgressMode = iota
	// ProgressAlways forces in-place repaints.
	ProgressAlways
	// ProgressNever waits for settlement and prints once.
	ProgressNever
)

// Options configures a listing run.
type Options struct {
	// RepoPath is the main repository path all git queries run against.
	RepoPath string
	// CurrentPath marks the worktree the command was invoked from.
	CurrentPath string

	// Branches adds local branches without a worktree as rows.
	Branches bool
	// Remotes adds remote branches without a local counterpart. Implies
	// nothing about Branches.
	Remotes bool
	// Full enables the expensive columns (CI, merge conflicts).
	Full bool
	// IncludePrunable keeps worktrees whose directory is gone.
	IncludePrunable bool
	// SkeletonOnly paints the placeholder table and exits without
	// running any background task.
	SkeletonOnly bool

	// URLTemplate, when set, adds the URL column expanded per branch.
	URLTemplate string
	// Hosts maps custom git hosts to a forge name, from config.
	Hosts map[string]string

	// Jobs bounds concurrent background tasks. 0 means DefaultJobs.
	Jobs int
	// TaskTimeout bounds each task. 0 means DefaultTaskTimeout.
	TaskTimeout time.Duration
	// Deadline bounds the whole listing. 0 means DefaultDrainDeadline.
	Deadline time.Duration

	Format   Format
	Progress ProgressMode
	// Out defaults to os.Stdout.
	Out io.Writer

	// Ops overrides the git backend, for tests.
	Ops *GitOps
	// Forge overrides forge detection, for tests.
	Forge forge.Forge
}

func (o Options) output() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

// Run executes the full listing: inventory, skeleton paint, background
// tasks, aggregation, final paint. A failed cell degrades its column
// for that row only and never fails the run.
func Run(ctx context.Context, opts Options) error {
	logger := log.FromContext(ctx)

	ops := DefaultGitOps()
	if opts.Ops != nil {
		ops = *opts.Ops
	}

	inv, err := BuildInventory(ctx, ops, opts, opts.CurrentPath)
	if err != nil {
		return err
	}
	m := NewModel(opts.RepoPath, inv.PrimaryBranch, inv.Rows)
	renderer := newRenderer(opts)

	if opts.SkeletonOnly {
		if err := renderer.Skeleton(m); err != nil {
			return err
		}
		return renderer.Finish(m)
	}

	var f forge.Forge
	if opts.Full {
		f = opts.Forge
		if f == nil {
			if origin, err := ops.OriginURL(ctx, opts.RepoPath); err == nil {
				f = forge.Detect(origin, opts.Hosts)
			}
		}
		if f != nil {
			if err := f.Check(ctx); err != nil {
				logger.Verbosef("%s unavailable, skipping CI column: %v", f.Name(), err)
				f = nil
			}
		}
	}

	tasks := EnumerateTasks(m, ops, opts, f)
	// The skeleton footer reads the progress counters, so the task
	// count must be in place before the first paint.
	m.total = len(tasks)
	if err := renderer.Skeleton(m); err != nil {
		return err
	}

	results := make(chan Result, len(tasks))
	go Dispatch(ctx, tasks, opts.Jobs, opts.TaskTimeout, results)
	Drain(ctx, m, tasks, results, opts.Deadline, func(row int) {
		// Repaint errors are cosmetic, results keep draining.
		_ = renderer.RowChanged(m, row)
	})
	return renderer.Finish(m)
}

// newRenderer picks in-place repainting for interactive table output
// and the one-shot static renderer for everything else. JSON and TSV
// never repaint.
func newRenderer(opts Options) Renderer {
	out := opts.output()
	if opts.Format == FormatTable && progressWanted(opts.Progress, out) {
		cols := Columns(opts)
		return NewProgressiveRenderer(out, cols, terminalWidth(out))
	}
	return NewStaticRenderer(out, Columns(opts), opts.Format)
}

func progressWanted(mode ProgressMode, out io.Writer) bool {
	switch mode {
	case ProgressAlways:
		return true
	case ProgressNever:
		return false
	}
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
