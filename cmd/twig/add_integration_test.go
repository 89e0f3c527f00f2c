//go:build integration

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/twig-dev/twig/internal/config"
	"github.com/twig-dev/twig/internal/git"
)

func TestAddIntegration(t *testing.T) {
	worktreeDir := resolvePath(t, t.TempDir())
	repoPath := setupTestRepo(t, t.TempDir(), "addrepo")

	defaults := config.Default()
	cfg = &defaults
	cfg.WorktreeDir = worktreeDir

	ctx, out := testContext(t)
	if err := runAdd(ctx, repoPath, "feature-x"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Folder name follows the {repo}-{branch} format; the repo name
	// comes from the origin URL.
	wantPath := filepath.Join(worktreeDir, "addrepo-feature-x")
	if strings.TrimSpace(out.String()) != wantPath {
		t.Errorf("printed path = %q, want %q", out.String(), wantPath)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("worktree directory missing: %v", err)
	}

	worktrees, err := git.ListWorktrees(ctx, repoPath)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, wt := range worktrees {
		if wt.Branch == "feature-x" {
			found = true
		}
	}
	if !found {
		t.Fatal("new worktree not listed")
	}

	// A second add for the same branch must fail: the branch is
	// already checked out.
	if err := runAdd(ctx, repoPath, "feature-x"); err == nil {
		t.Fatal("duplicate add succeeded")
	}
}

func TestAddExistingBranchIntegration(t *testing.T) {
	worktreeDir := resolvePath(t, t.TempDir())
	repoPath := setupTestRepo(t, t.TempDir(), "existrepo")
	gitRun(t, repoPath, "branch", "prepared")

	defaults := config.Default()
	cfg = &defaults
	cfg.WorktreeDir = worktreeDir

	ctx, _ := testContext(t)
	if err := runAdd(ctx, repoPath, "prepared"); err != nil {
		t.Fatalf("add for existing branch failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(worktreeDir, "existrepo-prepared")); err != nil {
		t.Fatalf("worktree directory missing: %v", err)
	}
}

func TestRemoveIntegration(t *testing.T) {
	worktreeDir := resolvePath(t, t.TempDir())
	repoPath := setupTestRepo(t, t.TempDir(), "rmrepo")
	worktreePath := filepath.Join(worktreeDir, "rmrepo-doomed")
	setupWorktree(t, repoPath, worktreePath, "doomed")

	defaults := config.Default()
	cfg = &defaults
	removeFlags.yes = true
	removeFlags.deleteBranch = true
	t.Cleanup(func() {
		removeFlags.yes = false
		removeFlags.deleteBranch = false
	})

	ctx, _ := testContext(t)
	if err := runRemove(ctx, repoPath, repoPath, "doomed"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(worktreePath); !os.IsNotExist(err) {
		t.Fatal("worktree directory still exists")
	}

	branches, err := git.LocalBranches(ctx, repoPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range branches {
		if b.Name == "doomed" {
			t.Fatal("branch survived --delete-branch")
		}
	}

	// Removing again fails cleanly.
	if err := runRemove(ctx, repoPath, repoPath, "doomed"); err == nil {
		t.Fatal("second remove succeeded")
	}
}

func TestRemoveRefusesMainCheckoutIntegration(t *testing.T) {
	repoPath := setupTestRepo(t, t.TempDir(), "mainrepo")

	defaults := config.Default()
	cfg = &defaults
	removeFlags.yes = true
	t.Cleanup(func() { removeFlags.yes = false })

	ctx, _ := testContext(t)
	if err := runRemove(ctx, repoPath, repoPath, "main"); err == nil {
		t.Fatal("removing the main checkout succeeded")
	}
}

func TestPruneIntegration(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t, t.TempDir(), "prunecmd")
	worktreePath := filepath.Join(resolvePath(t, t.TempDir()), "prunecmd-stale")
	setupWorktree(t, repoPath, worktreePath, "stale")
	if err := os.RemoveAll(worktreePath); err != nil {
		t.Fatal(err)
	}

	ctx, _ := testContext(t)

	// Dry run reports without pruning.
	pruned, err := git.PruneWorktrees(ctx, repoPath, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(pruned) != 1 {
		t.Fatalf("dry run reported %v", pruned)
	}
	worktrees, err := git.ListWorktrees(ctx, repoPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(worktrees) != 2 {
		t.Fatalf("dry run pruned for real: %d worktrees", len(worktrees))
	}

	if _, err := git.PruneWorktrees(ctx, repoPath, false); err != nil {
		t.Fatal(err)
	}
	worktrees, err = git.ListWorktrees(ctx, repoPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(worktrees) != 1 {
		t.Fatalf("stale worktree not pruned: %d worktrees", len(worktrees))
	}
}
