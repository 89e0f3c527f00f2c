package git

import "testing"

func TestParsePruneOutput(t *testing.T) {
	t.Parallel()
	out := `Removing worktrees/feature-x: gitdir file points to non-existent location
Removing worktrees/old: worktree directory does not exist
`
	pruned := parsePruneOutput(out)
	if len(pruned) != 2 {
		t.Fatalf("parsed %d pruned entries, want 2", len(pruned))
	}
	if pruned[0] != "feature-x" || pruned[1] != "old" {
		t.Errorf("pruned = %v", pruned)
	}
}

func TestParsePruneOutput_Empty(t *testing.T) {
	t.Parallel()
	if pruned := parsePruneOutput(""); len(pruned) != 0 {
		t.Errorf("pruned = %v, want none", pruned)
	}
}
