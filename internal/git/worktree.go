package git

import (
	"context"
	"fmt"
	"strings"
)

// AddWorktree creates a new worktree at path checked out on branch.
// When createBranch is true the branch is created from baseRef (HEAD
// when baseRef is empty); otherwise the existing branch is checked out.
func AddWorktree(ctx context.Context, repoPath, path, branch string, createBranch bool, baseRef string) error {
	args := []string{"worktree", "add"}
	if createBranch {
		args = append(args, "-b", branch, path)
		if baseRef != "" {
			args = append(args, baseRef)
		}
	} else {
		args = append(args, path, branch)
	}
	if err := runGit(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("failed to add worktree: %w", err)
	}
	return nil
}

// RemoveWorktree removes the worktree at path. With force, uncommitted
// changes and untracked files are discarded.
func RemoveWorktree(ctx context.Context, repoPath, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	if err := runGit(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("failed to remove worktree: %w", err)
	}
	return nil
}

// PruneWorktrees removes worktree registrations whose directories are
// gone. Returns the paths git reports as pruned.
func PruneWorktrees(ctx context.Context, repoPath string, dryRun bool) ([]string, error) {
	args := []string{"worktree", "prune", "--verbose"}
	if dryRun {
		args = append(args, "--dry-run")
	}
	output, err := outputGit(ctx, repoPath, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to prune worktrees: %w", err)
	}
	return parsePruneOutput(string(output)), nil
}

// parsePruneOutput extracts pruned paths from `git worktree prune -v`
// lines like "Removing worktrees/name: gitdir file points to non-existent location".
func parsePruneOutput(out string) []string {
	var pruned []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		name, ok := strings.CutPrefix(line, "Removing worktrees/")
		if !ok {
			continue
		}
		if idx := strings.Index(name, ":"); idx != -1 {
			name = name[:idx]
		}
		if name != "" {
			pruned = append(pruned, name)
		}
	}
	return pruned
}

// DeleteBranch deletes a local branch. With force, unmerged branches are
// deleted too.
func DeleteBranch(ctx context.Context, repoPath, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if err := runGit(ctx, repoPath, "branch", flag, branch); err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	return nil
}
