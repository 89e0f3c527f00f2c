package list

import (
	"context"
	"sort"
	"strings"

	"github.com/twig-dev/twig/internal/forge"
	"github.com/twig-dev/twig/internal/format"
	"github.com/twig-dev/twig/internal/git"
)

// GitOps bundles the git queries the engine runs, as function fields so
// tests can substitute stubs without a real repository. DefaultGitOps
// wires the real git package.
type GitOps struct {
	ListWorktrees    func(ctx context.Context, repoPath string) ([]git.Worktree, error)
	LocalBranches    func(ctx context.Context, repoPath string) ([]git.Branch, error)
	RemoteBranches   func(ctx context.Context, repoPath string) ([]git.Branch, error)
	DefaultBranch    func(ctx context.Context, repoPath string) string
	CommitDetails    func(ctx context.Context, repoPath string, refs []string) (map[string]git.Commit, error)
	OriginURL        func(ctx context.Context, repoPath string) (string, error)
	AheadBehind      func(ctx context.Context, repoPath, base, ref string) (ahead, behind int, err error)
	BranchDiff       func(ctx context.Context, repoPath, base, ref string) (git.DiffStats, error)
	WorkingTreeDiff  func(ctx context.Context, worktreePath string) (git.DiffStats, error)
	WorktreeStatus   func(ctx context.Context, worktreePath string) (git.Status, error)
	CurrentOperation func(ctx context.Context, worktreePath string) (git.Operation, error)
	Upstream         func(ctx context.Context, worktreePath string) (string, error)
	TreesMatch       func(ctx context.Context, repoPath, a, b string) (bool, error)
	MergeConflicts   func(ctx context.Context, repoPath, base, ref string) (bool, error)
	PortActive       func(url string) bool
}

// DefaultGitOps returns GitOps backed by the real git CLI.
func DefaultGitOps() GitOps {
	return GitOps{
		ListWorktrees:    git.ListWorktrees,
		LocalBranches:    git.LocalBranches,
		RemoteBranches:   git.RemoteBranches,
		DefaultBranch:    git.DefaultBranch,
		CommitDetails:    git.CommitDetails,
		OriginURL:        git.OriginURL,
		AheadBehind:      git.AheadBehind,
		BranchDiff:       git.BranchDiff,
		WorkingTreeDiff:  git.WorkingTreeDiff,
		WorktreeStatus:   git.WorktreeStatus,
		CurrentOperation: git.CurrentOperation,
		Upstream:         git.Upstream,
		TreesMatch:       git.TreesMatch,
		MergeConflicts:   git.MergeConflicts,
		PortActive:       format.PortActive,
	}
}

// Inventory is the result of the fixed-query phase: everything needed
// for the skeleton paint.
type Inventory struct {
	Rows          []*Row
	PrimaryBranch string
}

// BuildInventory enumerates worktrees (and optionally branches) with a
// constant number of git calls regardless of how many rows come back:
// one worktree list, up to two for-each-ref calls, the default branch
// lookup, and one batched commit detail query. Per-row git fan-out is
// deferred to the background tasks.
//
// currentPath is the worktree the command was invoked from, used to
// mark the current row. Errors here are fatal to the whole listing:
// there is no partial inventory.
func BuildInventory(ctx context.Context, ops GitOps, opts Options, currentPath string) (*Inventory, error) {
	worktrees, err := ops.ListWorktrees(ctx, opts.RepoPath)
	if err != nil {
		return nil, err
	}

	primary := ops.DefaultBranch(ctx, opts.RepoPath)

	var rows []*Row
	seen := make(map[string]bool)
	primaryPath := ""
	for _, wt := range worktrees {
		if wt.Bare {
			continue
		}
		if primaryPath == "" {
			primaryPath = wt.Path
		}
		if wt.Prunable && !opts.IncludePrunable {
			continue
		}
		row := &Row{
			Kind:        KindWorktree,
			Branch:      wt.Branch,
			Path:        wt.Path,
			Head:        wt.Head,
			Primary:     wt.Path == primaryPath,
			Current:     currentPath != "" && wt.Path == currentPath,
			Detached:    wt.Detached,
			Locked:      wt.Locked,
			LockReason:  wt.LockReason,
			Prunable:    wt.Prunable,
			PruneReason: wt.PruneReason,
		}
		rows = append(rows, row)
		seen[wt.Branch] = true
	}

	if opts.Branches {
		branches, err := ops.LocalBranches(ctx, opts.RepoPath)
		if err != nil {
			return nil, err
		}
		for _, b := range branches {
			if seen[b.Name] {
				continue
			}
			rows = append(rows, &Row{
				Kind:         KindBranch,
				Branch:       b.Name,
				Head:         b.Head,
				upstreamHint: b.Upstream,
			})
			seen[b.Name] = true
		}
	}
	if opts.Remotes {
		remotes, err := ops.RemoteBranches(ctx, opts.RepoPath)
		if err != nil {
			return nil, err
		}
		for _, b := range remotes {
			// Skip remote branches shadowed by a local branch of the
			// same short name.
			short := b.Name
			if idx := strings.Index(short, "/"); idx != -1 {
				short = short[idx+1:]
			}
			if seen[b.Name] || seen[short] {
				continue
			}
			rows = append(rows, &Row{
				Kind:   KindRemote,
				Branch: b.Name,
				Head:   b.Head,
			})
			seen[b.Name] = true
		}
	}

	fillCommits(ctx, ops, opts.RepoPath, rows)
	sortRows(rows)
	for i, r := range rows {
		r.Index = i
		if r.Primary {
			// The primary branch is its own comparison base: its
			// divergence is zero by definition, not unknown.
			r.Main.Set(Divergence{})
			r.Diff.Set(git.DiffStats{})
			r.Conflicts.Set(false)
			if _, done := r.Class.Value(); !done {
				r.Class.Set(ClassNormal)
			}
		}
		if cls, done := r.Class.Value(); done && cls == ClassNoCommits {
			// An unborn branch has nothing to query: settle every
			// cell to its zero value so the row renders blank
			// instead of staying pending forever.
			r.Status.Set(git.Status{})
			r.Op.Set(git.OpNone)
			r.Working.Set(git.DiffStats{})
			r.Upstream.Set(UpstreamInfo{})
			r.Main.Set(Divergence{})
			r.Diff.Set(git.DiffStats{})
			r.Conflicts.Set(false)
			r.CI.Set(forge.Status{State: forge.StateNone})
			r.URL.Set(URLInfo{})
		}
	}

	return &Inventory{Rows: rows, PrimaryBranch: primary}, nil
}

// fillCommits resolves commit metadata for all rows in one batched git
// call. A row with no resolvable head (freshly initialized repository)
// is classified "no commits" here, since no task can compute anything
// for it.
func fillCommits(ctx context.Context, ops GitOps, repoPath string, rows []*Row) {
	var refs []string
	var withHead []*Row
	for _, r := range rows {
		if r.Head == "" || r.Prunable {
			continue
		}
		refs = append(refs, r.Head)
		withHead = append(withHead, r)
	}

	details, err := ops.CommitDetails(ctx, repoPath, refs)
	if err != nil {
		details = nil
	}
	for _, r := range withHead {
		if c, ok := details[r.Head]; ok {
			r.Commit = c
		}
	}
	for _, r := range rows {
		if r.Head == "" && !r.Prunable {
			r.Class.Set(ClassNoCommits)
		}
	}
}

// sortRows orders the listing: current worktree first, then the
// primary, then newest commit first. The order is fixed before the
// skeleton paint and never changes across repaints.
func sortRows(rows []*Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Current != b.Current {
			return a.Current
		}
		if a.Primary != b.Primary {
			return a.Primary
		}
		if !a.Commit.Time.Equal(b.Commit.Time) {
			return a.Commit.Time.After(b.Commit.Time)
		}
		return a.Branch < b.Branch
	})
}
