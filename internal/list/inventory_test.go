package list

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/twig-dev/twig/internal/git"
)

// queryCounts tracks how many git calls the inventory phase made. The
// inventory runs single-threaded, so plain ints are fine here.
type queryCounts struct {
	listWorktrees  int
	localBranches  int
	remoteBranches int
	defaultBranch  int
	commitDetails  int
}

func (c queryCounts) total() int {
	return c.listWorktrees + c.localBranches + c.remoteBranches + c.defaultBranch + c.commitDetails
}

// stubInventoryOps returns GitOps serving canned inventory data and
// counting calls. Task-phase queries succeed with zero values.
func stubInventoryOps(counts *queryCounts, wts []git.Worktree, locals, remotes []git.Branch, commits map[string]git.Commit) GitOps {
	ops := stubTaskOps()
	ops.ListWorktrees = func(ctx context.Context, repoPath string) ([]git.Worktree, error) {
		counts.listWorktrees++
		return wts, nil
	}
	ops.LocalBranches = func(ctx context.Context, repoPath string) ([]git.Branch, error) {
		counts.localBranches++
		return locals, nil
	}
	ops.RemoteBranches = func(ctx context.Context, repoPath string) ([]git.Branch, error) {
		counts.remoteBranches++
		return remotes, nil
	}
	ops.DefaultBranch = func(ctx context.Context, repoPath string) string {
		counts.defaultBranch++
		return "main"
	}
	ops.CommitDetails = func(ctx context.Context, repoPath string, refs []string) (map[string]git.Commit, error) {
		counts.commitDetails++
		return commits, nil
	}
	return ops
}

// stubTaskOps returns GitOps whose per-row queries all succeed with
// zero values. Tests override individual fields.
func stubTaskOps() GitOps {
	return GitOps{
		AheadBehind: func(ctx context.Context, repoPath, base, ref string) (int, int, error) {
			return 0, 0, nil
		},
		BranchDiff: func(ctx context.Context, repoPath, base, ref string) (git.DiffStats, error) {
			return git.DiffStats{}, nil
		},
		WorkingTreeDiff: func(ctx context.Context, worktreePath string) (git.DiffStats, error) {
			return git.DiffStats{}, nil
		},
		WorktreeStatus: func(ctx context.Context, worktreePath string) (git.Status, error) {
			return git.Status{}, nil
		},
		CurrentOperation: func(ctx context.Context, worktreePath string) (git.Operation, error) {
			return git.OpNone, nil
		},
		Upstream: func(ctx context.Context, worktreePath string) (string, error) {
			return "", nil
		},
		TreesMatch: func(ctx context.Context, repoPath, a, b string) (bool, error) {
			return false, nil
		},
		MergeConflicts: func(ctx context.Context, repoPath, base, ref string) (bool, error) {
			return false, nil
		},
		OriginURL: func(ctx context.Context, repoPath string) (string, error) {
			return "", nil
		},
		PortActive: func(url string) bool { return false },
	}
}

// makeWorktrees builds n worktrees: the first is the main checkout, the
// rest feature worktrees with descending commit ages.
func makeWorktrees(n int) ([]git.Worktree, map[string]git.Commit) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	wts := make([]git.Worktree, 0, n)
	commits := make(map[string]git.Commit, n)
	for i := 0; i < n; i++ {
		branch := "main"
		if i > 0 {
			branch = fmt.Sprintf("feature-%d", i)
		}
		head := fmt.Sprintf("%040d", i)
		wts = append(wts, git.Worktree{
			Path:   fmt.Sprintf("/work/%s", branch),
			Branch: branch,
			Head:   head,
		})
		commits[head] = git.Commit{
			Hash:    head,
			Time:    base.Add(-time.Duration(i) * time.Hour),
			Subject: "change " + branch,
		}
	}
	return wts, commits
}

func TestBuildInventoryConstantQueries(t *testing.T) {
	t.Parallel()

	// The number of git calls must not scale with the worktree count.
	countFor := func(n int) queryCounts {
		var counts queryCounts
		wts, commits := makeWorktrees(n)
		ops := stubInventoryOps(&counts, wts, nil, nil, commits)
		if _, err := BuildInventory(context.Background(), ops, Options{RepoPath: "/repo"}, ""); err != nil {
			t.Fatalf("BuildInventory(%d): %v", n, err)
		}
		return counts
	}

	small := countFor(2)
	large := countFor(40)
	if small != large {
		t.Fatalf("query counts scale with worktrees: %+v vs %+v", small, large)
	}
	if small.total() != 3 {
		t.Fatalf("expected 3 queries (list, default branch, commits), got %+v", small)
	}
}

func TestBuildInventoryPrunable(t *testing.T) {
	t.Parallel()

	wts, commits := makeWorktrees(2)
	wts = append(wts, git.Worktree{
		Path:        "/work/gone",
		Branch:      "gone",
		Head:        "abc123",
		Prunable:    true,
		PruneReason: "gitdir file points to non-existent location",
	})

	var counts queryCounts
	ops := stubInventoryOps(&counts, wts, nil, nil, commits)

	inv, err := BuildInventory(context.Background(), ops, Options{RepoPath: "/repo"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(inv.Rows) != 2 {
		t.Fatalf("prunable worktree not skipped: %d rows", len(inv.Rows))
	}

	inv, err = BuildInventory(context.Background(), ops, Options{RepoPath: "/repo", IncludePrunable: true}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(inv.Rows) != 3 {
		t.Fatalf("include-prunable: %d rows, want 3", len(inv.Rows))
	}
	var prunable *Row
	for _, r := range inv.Rows {
		if r.Prunable {
			prunable = r
		}
	}
	if prunable == nil {
		t.Fatal("no prunable row")
	}
	if prunable.PruneReason == "" || prunable.HasWorktree() {
		t.Fatalf("prunable row = %+v", prunable)
	}
}

func TestBuildInventoryBranchesAndRemotes(t *testing.T) {
	t.Parallel()

	wts, commits := makeWorktrees(2)
	locals := []git.Branch{
		{Name: "main", Head: wts[0].Head},                   // has a worktree, deduped
		{Name: "spare", Head: "b1", Upstream: "origin/spare"},
	}
	remotes := []git.Branch{
		{Name: "origin/spare", Head: "b1"},  // shadowed by local "spare"
		{Name: "origin/remote-only", Head: "r1"},
	}
	commits["b1"] = git.Commit{Hash: "b1", Time: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}
	commits["r1"] = git.Commit{Hash: "r1", Time: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}

	var counts queryCounts
	ops := stubInventoryOps(&counts, wts, locals, remotes, commits)

	inv, err := BuildInventory(context.Background(), ops, Options{RepoPath: "/repo", Branches: true, Remotes: true}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(inv.Rows) != 4 {
		t.Fatalf("got %d rows, want 4 (2 worktrees, spare, origin/remote-only)", len(inv.Rows))
	}

	byBranch := make(map[string]*Row)
	for _, r := range inv.Rows {
		byBranch[r.Branch] = r
	}
	spare, ok := byBranch["spare"]
	if !ok || spare.Kind != KindBranch {
		t.Fatalf("spare row = %+v", spare)
	}
	if spare.upstreamHint != "origin/spare" {
		t.Fatalf("spare upstream hint = %q", spare.upstreamHint)
	}
	remote, ok := byBranch["origin/remote-only"]
	if !ok || remote.Kind != KindRemote {
		t.Fatalf("remote row = %+v", remote)
	}
	if _, shadowed := byBranch["origin/spare"]; shadowed {
		t.Fatal("shadowed remote branch not skipped")
	}
	// Batched commit lookup stays a single call even with branch rows.
	if counts.commitDetails != 1 {
		t.Fatalf("commitDetails called %d times", counts.commitDetails)
	}
}

func TestBuildInventoryOrder(t *testing.T) {
	t.Parallel()

	wts, commits := makeWorktrees(4)

	var counts queryCounts
	ops := stubInventoryOps(&counts, wts, nil, nil, commits)

	// Invoked from feature-2: it sorts first, then the main checkout,
	// then the rest by commit recency.
	inv, err := BuildInventory(context.Background(), ops, Options{RepoPath: "/repo"}, "/work/feature-2")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range inv.Rows {
		got = append(got, r.Branch)
	}
	want := []string{"feature-2", "main", "feature-1", "feature-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row order = %v, want %v", got, want)
		}
	}
	for i, r := range inv.Rows {
		if r.Index != i {
			t.Fatalf("row %s has index %d at position %d", r.Branch, r.Index, i)
		}
	}
	if !inv.Rows[0].Current {
		t.Fatal("first row not marked current")
	}
	if !inv.Rows[1].Primary {
		t.Fatal("second row not marked primary")
	}
}

func TestBuildInventoryPrimaryPresettled(t *testing.T) {
	t.Parallel()

	wts, commits := makeWorktrees(2)
	var counts queryCounts
	ops := stubInventoryOps(&counts, wts, nil, nil, commits)

	inv, err := BuildInventory(context.Background(), ops, Options{RepoPath: "/repo"}, "")
	if err != nil {
		t.Fatal(err)
	}
	primary := inv.Rows[0]
	if !primary.Primary {
		t.Fatalf("first row is %s, not primary", primary.Branch)
	}
	// The primary compares against itself, so these cells settle at
	// inventory time instead of waiting on tasks.
	if _, ok := primary.Main.Value(); !ok {
		t.Error("primary Main cell still pending")
	}
	if _, ok := primary.Diff.Value(); !ok {
		t.Error("primary Diff cell still pending")
	}
	if v, ok := primary.Conflicts.Value(); !ok || v {
		t.Errorf("primary Conflicts cell = %v, %v", v, ok)
	}

	secondary := inv.Rows[1]
	if secondary.Main.State() != CellPending {
		t.Error("secondary Main cell settled without a task")
	}
}

func TestBuildInventoryEmptyRepo(t *testing.T) {
	t.Parallel()

	// Freshly initialized repo: one worktree, unborn branch, no commits.
	wts := []git.Worktree{{Path: "/repo", Branch: "main"}}
	var counts queryCounts
	ops := stubInventoryOps(&counts, wts, nil, nil, nil)

	inv, err := BuildInventory(context.Background(), ops, Options{RepoPath: "/repo"}, "/repo")
	if err != nil {
		t.Fatal(err)
	}
	if len(inv.Rows) != 1 {
		t.Fatalf("got %d rows", len(inv.Rows))
	}
	row := inv.Rows[0]
	cls, ok := row.Class.Value()
	if !ok || cls != ClassNoCommits {
		t.Fatalf("classification = %v, %v; want no-commits", cls, ok)
	}
	// With no tasks coming, every cell must already be settled or the
	// row would show placeholders forever.
	for name, state := range map[string]CellState{
		"Status":   row.Status.State(),
		"Op":       row.Op.State(),
		"Working":  row.Working.State(),
		"Upstream": row.Upstream.State(),
		"Main":     row.Main.State(),
		"CI":       row.CI.State(),
	} {
		if state != CellDone {
			t.Errorf("%s cell not settled on a no-commit row", name)
		}
	}
	if text := statusText(row); strings.Contains(text, Placeholder) || !strings.Contains(text, "∅") {
		t.Errorf("status = %q, want the no-commits marker and no placeholder", text)
	}

	m := NewModel("/repo", inv.PrimaryBranch, inv.Rows)
	if tasks := EnumerateTasks(m, ops, Options{RepoPath: "/repo"}, nil); len(tasks) != 0 {
		t.Fatalf("no-commit row got %d tasks", len(tasks))
	}
}
