package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/twig-dev/twig/internal/git"
	"github.com/twig-dev/twig/internal/log"
	"github.com/twig-dev/twig/internal/ui"
)

var removeFlags struct {
	force        bool
	yes          bool
	deleteBranch bool
}

var removeCmd = &cobra.Command{
	Use:     "remove BRANCH",
	Aliases: []string{"rm"},
	GroupID: GroupCore,
	Short:   "Remove a worktree",
	Long: `Remove the worktree checked out for BRANCH.

Removal refuses when the working tree is dirty unless --force is
given. The branch itself stays unless --delete-branch is passed.

Examples:
  twig remove feature-auth
  twig remove feature-auth --delete-branch
  twig remove feature-auth --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repoPath, currentPath, err := repoContext(ctx)
		if err != nil {
			return err
		}
		return runRemove(ctx, repoPath, currentPath, args[0])
	},
}

func runRemove(ctx context.Context, repoPath, currentPath, branch string) error {
	logger := log.FromContext(ctx)

	wt, err := worktreeForBranch(ctx, repoPath, branch)
	if err != nil {
		return err
	}
	if wt.Path == repoPath {
		return fmt.Errorf("refusing to remove the main checkout")
	}
	if wt.Path == currentPath {
		return fmt.Errorf("cannot remove the worktree you are in, cd out first")
	}

	if !removeFlags.yes && isatty.IsTerminal(os.Stdin.Fd()) {
		res, err := ui.Confirm(fmt.Sprintf("Remove worktree %s?", wt.Path))
		if err != nil {
			return err
		}
		if !res.Confirmed {
			return fmt.Errorf("aborted")
		}
	}

	if err := git.RemoveWorktree(ctx, repoPath, wt.Path, removeFlags.force); err != nil {
		return err
	}
	logger.Printf("Removed worktree %s\n", wt.Path)

	if removeFlags.deleteBranch && !wt.Detached {
		if err := git.DeleteBranch(ctx, repoPath, branch, removeFlags.force); err != nil {
			return fmt.Errorf("worktree removed, but: %w", err)
		}
		logger.Printf("Deleted branch %s\n", branch)
	}
	return nil
}

func worktreeForBranch(ctx context.Context, repoPath, branch string) (git.Worktree, error) {
	worktrees, err := git.ListWorktrees(ctx, repoPath)
	if err != nil {
		return git.Worktree{}, err
	}
	for _, wt := range worktrees {
		if wt.Branch == branch {
			return wt, nil
		}
	}
	return git.Worktree{}, fmt.Errorf("no worktree for branch %q", branch)
}

func init() {
	removeCmd.Flags().BoolVarP(&removeFlags.force, "force", "f", false, "Remove even with uncommitted changes")
	removeCmd.Flags().BoolVarP(&removeFlags.yes, "yes", "y", false, "Skip the confirmation prompt")
	removeCmd.Flags().BoolVar(&removeFlags.deleteBranch, "delete-branch", false, "Also delete the branch")
	rootCmd.AddCommand(removeCmd)
}
