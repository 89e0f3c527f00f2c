package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/twig-dev/twig/internal/cmd"
)

// AheadBehind counts commits that ref has over base and vice versa.
func AheadBehind(ctx context.Context, repoPath, base, ref string) (ahead, behind int, err error) {
	output, err := outputGit(ctx, repoPath, "rev-list", "--left-right", "--count",
		fmt.Sprintf("%s...%s", base, ref))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count commits: %w", err)
	}
	fields := strings.Fields(string(output))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output: %q", string(output))
	}
	behind, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output: %q", string(output))
	}
	ahead, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output: %q", string(output))
	}
	return ahead, behind, nil
}

// DiffStats aggregates a numstat diff.
type DiffStats struct {
	Additions int
	Deletions int
	Files     int
}

// IsZero reports whether the diff touched no files.
func (d DiffStats) IsZero() bool { return d.Files == 0 }

// BranchDiff returns the diff stats of ref against the merge base with base.
func BranchDiff(ctx context.Context, repoPath, base, ref string) (DiffStats, error) {
	output, err := outputGit(ctx, repoPath, "diff", "--numstat",
		fmt.Sprintf("%s...%s", base, ref))
	if err != nil {
		return DiffStats{}, fmt.Errorf("failed to diff %s: %w", ref, err)
	}
	return parseNumstat(string(output)), nil
}

// WorkingTreeDiff returns the uncommitted diff stats of a worktree,
// including staged changes.
func WorkingTreeDiff(ctx context.Context, worktreePath string) (DiffStats, error) {
	output, err := outputGit(ctx, worktreePath, "diff", "--numstat", "HEAD")
	if err != nil {
		return DiffStats{}, fmt.Errorf("failed to diff working tree: %w", err)
	}
	return parseNumstat(string(output)), nil
}

// parseNumstat parses `git diff --numstat` output. Binary files report
// "-" for both counts and are tallied as files only.
func parseNumstat(out string) DiffStats {
	var stats DiffStats
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if add, err := strconv.Atoi(fields[0]); err == nil {
			stats.Additions += add
		}
		if del, err := strconv.Atoi(fields[1]); err == nil {
			stats.Deletions += del
		}
		stats.Files++
	}
	return stats
}

// Status summarizes the working tree state of one worktree.
type Status struct {
	Staged     int
	Modified   int
	Untracked  int
	Conflicted int
}

// IsClean reports whether the worktree has no pending changes.
func (s Status) IsClean() bool {
	return s.Staged == 0 && s.Modified == 0 && s.Untracked == 0 && s.Conflicted == 0
}

// WorktreeStatus reads the short status of a worktree in one git call.
func WorktreeStatus(ctx context.Context, worktreePath string) (Status, error) {
	output, err := outputGit(ctx, worktreePath, "status", "--porcelain")
	if err != nil {
		return Status{}, fmt.Errorf("failed to read status: %w", err)
	}
	return parseStatus(string(output)), nil
}

// parseStatus parses `git status --porcelain` output. Each line carries
// a two-letter XY code followed by the path.
func parseStatus(out string) Status {
	var s Status
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 {
			continue
		}
		x, y := line[0], line[1]
		switch {
		case x == '?' && y == '?':
			s.Untracked++
		case x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
			s.Conflicted++
		default:
			if x != ' ' {
				s.Staged++
			}
			if y != ' ' {
				s.Modified++
			}
		}
	}
	return s
}

// Operation names an in-progress multi-step git operation.
type Operation string

const (
	OpNone       Operation = ""
	OpRebase     Operation = "rebase"
	OpMerge      Operation = "merge"
	OpCherryPick Operation = "cherry-pick"
	OpRevert     Operation = "revert"
	OpBisect     Operation = "bisect"
)

// CurrentOperation reports whether a rebase, merge, or similar operation
// is in progress in the given worktree.
func CurrentOperation(ctx context.Context, worktreePath string) (Operation, error) {
	output, err := outputGit(ctx, worktreePath, "rev-parse", "--path-format=absolute", "--git-dir")
	if err != nil {
		return OpNone, fmt.Errorf("failed to locate git dir: %w", err)
	}
	return operationFromGitDir(strings.TrimSpace(string(output))), nil
}

// operationFromGitDir checks the marker files git leaves in the per
// worktree git directory while an operation is in progress.
func operationFromGitDir(gitDir string) Operation {
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(gitDir, name))
		return err == nil
	}
	switch {
	case exists("rebase-merge") || exists("rebase-apply"):
		return OpRebase
	case exists("MERGE_HEAD"):
		return OpMerge
	case exists("CHERRY_PICK_HEAD"):
		return OpCherryPick
	case exists("REVERT_HEAD"):
		return OpRevert
	case exists("BISECT_LOG"):
		return OpBisect
	}
	return OpNone
}

// Upstream returns the short name of the configured upstream for the
// HEAD of the given worktree, or empty string when none is set.
func Upstream(ctx context.Context, worktreePath string) (string, error) {
	output, err := outputGit(ctx, worktreePath, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		// Git reports "no upstream configured" as exit code 128.
		if cmd.ExitCode(err) != -1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// TreesMatch reports whether two refs point at identical trees, meaning
// their committed content is the same even if their histories differ.
func TreesMatch(ctx context.Context, repoPath, a, b string) (bool, error) {
	output, err := outputGit(ctx, repoPath, "rev-parse", a+"^{tree}", b+"^{tree}")
	if err != nil {
		return false, fmt.Errorf("failed to resolve trees: %w", err)
	}
	trees := strings.Fields(string(output))
	if len(trees) != 2 {
		return false, fmt.Errorf("unexpected rev-parse output: %q", string(output))
	}
	return trees[0] == trees[1], nil
}

// MergeConflicts reports whether merging ref into base would conflict,
// without touching the working tree. Requires git 2.38 or newer for
// merge-tree --write-tree.
func MergeConflicts(ctx context.Context, repoPath, base, ref string) (bool, error) {
	_, err := outputGit(ctx, repoPath, "merge-tree", "--write-tree", "--name-only", base, ref)
	if err == nil {
		return false, nil
	}
	// Exit code 1 means the merge is possible but has conflicts.
	if cmd.ExitCode(err) == 1 {
		return true, nil
	}
	return false, fmt.Errorf("failed to test merge: %w", err)
}

// Fetch updates a single remote-tracking branch from origin.
func Fetch(ctx context.Context, repoPath, branch string) error {
	if err := runGit(ctx, repoPath, "fetch", "origin", branch, "--quiet"); err != nil {
		return fmt.Errorf("failed to fetch origin/%s: %w", branch, err)
	}
	return nil
}
