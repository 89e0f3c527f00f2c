package git

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseNumstat(t *testing.T) {
	t.Parallel()
	out := "10\t2\tmain.go\n0\t5\tREADME.md\n-\t-\tlogo.png\n"
	stats := parseNumstat(out)
	if stats.Additions != 10 {
		t.Errorf("additions = %d, want 10", stats.Additions)
	}
	if stats.Deletions != 7 {
		t.Errorf("deletions = %d, want 7", stats.Deletions)
	}
	if stats.Files != 3 {
		t.Errorf("files = %d, want 3", stats.Files)
	}
}

func TestParseNumstat_Empty(t *testing.T) {
	t.Parallel()
	if stats := parseNumstat(""); !stats.IsZero() {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()
	out := " M modified.go\nM  staged.go\nMM both.go\n?? new.go\nUU conflicted.go\nAA added-both.go\n"
	s := parseStatus(out)
	if s.Modified != 2 {
		t.Errorf("modified = %d, want 2", s.Modified)
	}
	if s.Staged != 2 {
		t.Errorf("staged = %d, want 2", s.Staged)
	}
	if s.Untracked != 1 {
		t.Errorf("untracked = %d, want 1", s.Untracked)
	}
	if s.Conflicted != 2 {
		t.Errorf("conflicted = %d, want 2", s.Conflicted)
	}
	if s.IsClean() {
		t.Error("IsClean() = true, want false")
	}
}

func TestParseStatus_Clean(t *testing.T) {
	t.Parallel()
	if s := parseStatus(""); !s.IsClean() {
		t.Errorf("status = %+v, want clean", s)
	}
}

func TestOperationFromGitDir(t *testing.T) {
	t.Parallel()
	tests := []struct {
		marker string
		isDir  bool
		want   Operation
	}{
		{"rebase-merge", true, OpRebase},
		{"rebase-apply", true, OpRebase},
		{"MERGE_HEAD", false, OpMerge},
		{"CHERRY_PICK_HEAD", false, OpCherryPick},
		{"REVERT_HEAD", false, OpRevert},
		{"BISECT_LOG", false, OpBisect},
		{"", false, OpNone},
	}
	for _, tt := range tests {
		t.Run(string(tt.want)+"_"+tt.marker, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			if tt.marker != "" {
				path := filepath.Join(dir, tt.marker)
				if tt.isDir {
					if err := os.Mkdir(path, 0o755); err != nil {
						t.Fatal(err)
					}
				} else if err := os.WriteFile(path, nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if got := operationFromGitDir(dir); got != tt.want {
				t.Errorf("operationFromGitDir(%s) = %q, want %q", tt.marker, got, tt.want)
			}
		})
	}
}
