package git

import (
	"testing"
	"time"
)

func TestParseWorktreeList(t *testing.T) {
	t.Parallel()
	out := `worktree /home/u/proj
HEAD aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa
branch refs/heads/main

worktree /home/u/proj-feature
HEAD bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb
branch refs/heads/feature
locked build in progress

worktree /home/u/proj-old
HEAD cccccccccccccccccccccccccccccccccccccccc
detached
prunable gitdir file points to non-existent location

worktree /home/u/proj.git
bare
`
	wts := parseWorktreeList(out)
	if len(wts) != 4 {
		t.Fatalf("parsed %d worktrees, want 4", len(wts))
	}
	if wts[0].Path != "/home/u/proj" || wts[0].Branch != "main" {
		t.Errorf("main worktree = %+v", wts[0])
	}
	if !wts[1].Locked || wts[1].LockReason != "build in progress" {
		t.Errorf("locked worktree = %+v", wts[1])
	}
	if wts[2].Branch != DetachedBranch || !wts[2].Detached {
		t.Errorf("detached worktree = %+v", wts[2])
	}
	if !wts[2].Prunable || wts[2].PruneReason == "" {
		t.Errorf("prunable worktree = %+v", wts[2])
	}
	if !wts[3].Bare {
		t.Errorf("bare worktree = %+v", wts[3])
	}
}

func TestParseWorktreeList_UnbornBranch(t *testing.T) {
	t.Parallel()
	out := `worktree /home/u/fresh
HEAD 0000000000000000000000000000000000000000
branch refs/heads/main
`
	wts := parseWorktreeList(out)
	if len(wts) != 1 {
		t.Fatalf("parsed %d worktrees, want 1", len(wts))
	}
	if wts[0].Head != "" {
		t.Errorf("Head = %q, want empty for an unborn branch", wts[0].Head)
	}
	if wts[0].Branch != "main" {
		t.Errorf("Branch = %q, want main", wts[0].Branch)
	}
}

func TestParseWorktreeList_Empty(t *testing.T) {
	t.Parallel()
	if wts := parseWorktreeList(""); len(wts) != 0 {
		t.Errorf("parsed %d worktrees from empty output, want 0", len(wts))
	}
}

func TestParseBranches(t *testing.T) {
	t.Parallel()
	out := "main\x00aaaa\x00origin/main\nfeature\x00bbbb\x00\nno-upstream\x00cccc\x00\n"
	branches := parseBranches(out)
	if len(branches) != 3 {
		t.Fatalf("parsed %d branches, want 3", len(branches))
	}
	if branches[0].Name != "main" || branches[0].Upstream != "origin/main" {
		t.Errorf("branch[0] = %+v", branches[0])
	}
	if branches[1].Upstream != "" {
		t.Errorf("branch[1].Upstream = %q, want empty", branches[1].Upstream)
	}
}

func TestParseCommitLines(t *testing.T) {
	t.Parallel()
	out := "aaaa\x001700000000\x00fix: handle spaces in subject\nbbbb\x001700000100\x00initial commit\n"
	commits := parseCommitLines(out)
	if len(commits) != 2 {
		t.Fatalf("parsed %d commits, want 2", len(commits))
	}
	c := commits["aaaa"]
	if c.Subject != "fix: handle spaces in subject" {
		t.Errorf("subject = %q", c.Subject)
	}
	if !c.Time.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("time = %v", c.Time)
	}
	if _, ok := commits["cccc"]; ok {
		t.Error("unexpected commit cccc")
	}
}

func TestRepoName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/widget.git", "widget"},
		{"git@github.com:acme/widget.git", "widget"},
		{"https://gitlab.example.com/group/sub/widget", "widget"},
		{"git@host:widget.git", "widget"},
		{"widget", "widget"},
	}
	for _, tt := range tests {
		if got := RepoName(tt.url); got != tt.want {
			t.Errorf("RepoName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
