package main

import (
	"github.com/spf13/cobra"

	"github.com/twig-dev/twig/internal/git"
	"github.com/twig-dev/twig/internal/log"
	"github.com/twig-dev/twig/internal/output"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:     "prune",
	GroupID: GroupUtility,
	Short:   "Drop worktree records whose directory is gone",
	Long: `Remove stale worktree administrative entries, the ones 'twig list'
marks with the prunable symbol.

Examples:
  twig prune --dry-run   # show what would be pruned
  twig prune`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repoPath, _, err := repoContext(ctx)
		if err != nil {
			return err
		}

		pruned, err := git.PruneWorktrees(ctx, repoPath, pruneDryRun)
		if err != nil {
			return err
		}
		if len(pruned) == 0 {
			log.FromContext(ctx).Println("Nothing to prune")
			return nil
		}
		printer := output.FromContext(ctx)
		for _, name := range pruned {
			printer.Println(name)
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().BoolVarP(&pruneDryRun, "dry-run", "n", false, "Show what would be pruned without pruning")
	rootCmd.AddCommand(pruneCmd)
}
