package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twig-dev/twig/internal/format"
	"github.com/twig-dev/twig/internal/git"
	"github.com/twig-dev/twig/internal/log"
	"github.com/twig-dev/twig/internal/output"
)

var addFlags struct {
	dir  string
	base string
}

var addCmd = &cobra.Command{
	Use:     "add BRANCH",
	GroupID: GroupCore,
	Short:   "Create a worktree for a new or existing branch",
	Long: `Create a worktree for BRANCH and print its path.

If the branch does not exist it is created from --base (default: the
repository's default branch). The worktree folder is named by the
configured format, default "{repo}-{branch}", and created next to the
main checkout unless worktree_dir is configured or --dir is given.

Examples:
  twig add feature-auth              # new branch, sibling folder
  twig add feature-auth --base v2    # branch off v2
  twig add hotfix -d ~/work/trees    # explicit parent directory`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		branch := args[0]

		repoPath, _, err := repoContext(ctx)
		if err != nil {
			return err
		}
		return runAdd(ctx, repoPath, branch)
	},
}

func runAdd(ctx context.Context, repoPath, branch string) error {
	logger := log.FromContext(ctx)

	parent, err := worktreeParent(repoPath)
	if err != nil {
		return err
	}
	path := filepath.Join(parent, worktreeFolder(ctx, repoPath, branch))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("path %s already exists", path)
	}

	createBranch, err := branchMissing(ctx, repoPath, branch)
	if err != nil {
		return err
	}
	baseRef := addFlags.base
	if createBranch && baseRef == "" {
		baseRef = git.DefaultBranch(ctx, repoPath)
	}
	if !createBranch && addFlags.base != "" {
		return fmt.Errorf("branch %q already exists, --base only applies to new branches", branch)
	}

	if err := git.AddWorktree(ctx, repoPath, path, branch, createBranch, baseRef); err != nil {
		return err
	}
	if createBranch {
		logger.Printf("Created branch %s from %s\n", branch, baseRef)
	}
	output.FromContext(ctx).Println(path)
	return nil
}

// worktreeParent picks the directory new worktrees go into: the --dir
// flag, then worktree_dir from config, then the main checkout's parent.
func worktreeParent(repoPath string) (string, error) {
	if addFlags.dir != "" {
		return filepath.Abs(addFlags.dir)
	}
	if cfg.WorktreeDir != "" {
		return cfg.WorktreeDir, nil
	}
	return filepath.Dir(repoPath), nil
}

func worktreeFolder(ctx context.Context, repoPath, branch string) string {
	repo := filepath.Base(repoPath)
	if url, err := git.OriginURL(ctx, repoPath); err == nil && url != "" {
		if name := git.RepoName(url); name != "" {
			repo = name
		}
	}
	return format.WorktreeName(cfg.WorktreeFormat, format.WorktreeParams{
		Repo:   repo,
		Branch: branch,
		Folder: filepath.Base(repoPath),
	})
}

func branchMissing(ctx context.Context, repoPath, branch string) (bool, error) {
	branches, err := git.LocalBranches(ctx, repoPath)
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		if b.Name == branch {
			return false, nil
		}
	}
	return true, nil
}

func init() {
	addCmd.Flags().StringVarP(&addFlags.dir, "dir", "d", "", "Parent directory for the new worktree")
	addCmd.Flags().StringVar(&addFlags.base, "base", "", "Base ref for a newly created branch")
	rootCmd.AddCommand(addCmd)
}
