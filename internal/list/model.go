package list

import (
	"time"

	"github.com/twig-dev/twig/internal/forge"
	"github.com/twig-dev/twig/internal/git"
)

// CellState tags the lifecycle of one computed cell group.
type CellState int

const (
	// CellPending means the owning task has not reported yet.
	CellPending CellState = iota
	// CellDegraded means the owning task failed or timed out. The cell
	// renders an explicit unknown marker, never a stale value.
	CellDegraded
	// CellDone means the owning task delivered a value.
	CellDone
)

// Cell is a tagged value for one computed column group. The zero value
// is pending. Sentinel values are never used to signal "unknown":
// a done cell with a zero value means the value really is zero.
type Cell[T any] struct {
	state  CellState
	reason string
	value  T
}

// State returns the cell's lifecycle tag.
func (c *Cell[T]) State() CellState { return c.state }

// Set stores a final value. Transitions are one-way: a done cell is
// never reverted to pending.
func (c *Cell[T]) Set(v T) {
	c.state = CellDone
	c.value = v
}

// Degrade marks the cell unknown with a reason for verbose logs.
func (c *Cell[T]) Degrade(reason string) {
	if c.state == CellDone {
		return
	}
	c.state = CellDegraded
	c.reason = reason
}

// Value returns the stored value and whether the cell is done.
func (c *Cell[T]) Value() (T, bool) {
	return c.value, c.state == CellDone
}

// Reason returns why a degraded cell has no value.
func (c *Cell[T]) Reason() string { return c.reason }

// RowKind distinguishes what a row represents.
type RowKind int

const (
	// KindWorktree is a checked-out worktree.
	KindWorktree RowKind = iota
	// KindBranch is a local branch without a worktree.
	KindBranch
	// KindRemote is a remote-tracking branch without a local branch.
	KindRemote
)

func (k RowKind) String() string {
	switch k {
	case KindWorktree:
		return "worktree"
	case KindBranch:
		return "branch"
	case KindRemote:
		return "remote"
	}
	return "unknown"
}

// Classification is the summary relationship of a row to the primary branch.
type Classification int

const (
	// ClassNormal is a regular branch with its own commits.
	ClassNormal Classification = iota
	// ClassMatchesMain means the row's tree is identical to the primary
	// branch tree, so the branch carries no effective changes.
	ClassMatchesMain
	// ClassNoCommits means the repository (or branch) has no commits at
	// all, as in a freshly initialized repository.
	ClassNoCommits
)

func (c Classification) String() string {
	switch c {
	case ClassMatchesMain:
		return "matches-main"
	case ClassNoCommits:
		return "no-commits"
	}
	return "normal"
}

// Divergence is an ahead/behind pair against some base ref.
type Divergence struct {
	Ahead  int
	Behind int
}

// UpstreamInfo is the tracking relationship of a row's branch.
type UpstreamInfo struct {
	// Name is the short upstream ref, empty when none is configured.
	Name string
	Divergence
}

// URLInfo is the templated extra column with its liveness probe result.
type URLInfo struct {
	URL string
	// Active is nil until probed, then reports whether the port answers.
	Active *bool
}

// Row is one line of the listing: immutable identity resolved at
// inventory time plus independently-settable computed cell groups.
// Each cell group has exactly one producing task.
type Row struct {
	Index int
	Kind  RowKind

	Branch   string
	Path     string // empty for rows without a worktree
	Head     string
	Primary  bool
	Current  bool
	Detached bool

	Locked      bool
	LockReason  string
	Prunable    bool
	PruneReason string

	// upstreamHint is the tracking ref reported by for-each-ref for
	// branch-only rows, where no worktree exists to resolve @{upstream}.
	upstreamHint string

	// Commit is filled from the batched inventory query, not a task.
	Commit git.Commit

	Main      Cell[Divergence]    // ahead/behind vs the primary branch
	Diff      Cell[git.DiffStats] // line diff vs the primary branch
	Working   Cell[git.DiffStats] // uncommitted line diff
	Status    Cell[git.Status]    // working tree state
	Op        Cell[git.Operation] // rebase/merge in progress
	Upstream  Cell[UpstreamInfo]
	Class     Cell[Classification]
	CI        Cell[forge.Status]
	Conflicts Cell[bool] // merge into primary would conflict
	URL       Cell[URLInfo]
}

// HasWorktree reports whether the row has a checked-out directory to
// run working-tree queries in.
func (r *Row) HasWorktree() bool {
	return r.Kind == KindWorktree && !r.Prunable
}

// Model is the shared render model: the row set plus layout metadata.
// It is mutated only by the aggregator's drain loop (single writer) and
// read by the renderer.
type Model struct {
	Rows          []*Row
	PrimaryBranch string
	RepoPath      string

	// widths holds the widest content seen per column. Widths only
	// grow within one invocation so the layout never jitters.
	widths map[columnKey]int

	done  int // tasks settled
	total int // tasks dispatched
}

// NewModel builds a model over rows.
func NewModel(repoPath, primaryBranch string, rows []*Row) *Model {
	return &Model{
		Rows:          rows,
		PrimaryBranch: primaryBranch,
		RepoPath:      repoPath,
		widths:        make(map[columnKey]int),
	}
}

// Width returns the monotonic column width: the widest of the previous
// width and w.
func (m *Model) Width(key columnKey, w int) int {
	if w > m.widths[key] {
		m.widths[key] = w
	}
	return m.widths[key]
}

// Progress returns settled and dispatched task counts for the footer.
func (m *Model) Progress() (done, total int) {
	return m.done, m.total
}

// Settled reports whether every dispatched task has reported.
func (m *Model) Settled() bool {
	return m.done >= m.total
}

// RowSnapshot is a read-only projection of a row for consumers (the
// interactive picker) that must not see or touch the live model.
type RowSnapshot struct {
	Branch     string
	Path       string
	Kind       RowKind
	Current    bool
	Primary    bool
	CommitTime time.Time
	Subject    string
}

// Snapshot copies the identity fields of all rows.
func (m *Model) Snapshot() []RowSnapshot {
	snaps := make([]RowSnapshot, len(m.Rows))
	for i, r := range m.Rows {
		snaps[i] = RowSnapshot{
			Branch:     r.Branch,
			Path:       r.Path,
			Kind:       r.Kind,
			Current:    r.Current,
			Primary:    r.Primary,
			CommitTime: r.Commit.Time,
			Subject:    r.Commit.Subject,
		}
	}
	return snaps
}
