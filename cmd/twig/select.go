package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/twig-dev/twig/internal/list"
	"github.com/twig-dev/twig/internal/output"
	"github.com/twig-dev/twig/internal/ui"
)

var selectBranches bool

var selectCmd = &cobra.Command{
	Use:     "select",
	Aliases: []string{"sel"},
	GroupID: GroupCore,
	Short:   "Pick a worktree interactively and print its path",
	Long: `Open a fuzzy picker over the worktrees of this repository and print
the chosen path to stdout.

Pair it with a shell function to jump between worktrees:

  tw() { cd "$(twig select)" || return; }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repoPath, currentPath, err := repoContext(ctx)
		if err != nil {
			return err
		}
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("select needs an interactive terminal")
		}

		ops := list.DefaultGitOps()
		inv, err := list.BuildInventory(ctx, ops, list.Options{
			RepoPath: repoPath,
			Branches: selectBranches,
		}, currentPath)
		if err != nil {
			return err
		}
		m := list.NewModel(repoPath, inv.PrimaryBranch, inv.Rows)

		res, err := ui.Pick(m.Snapshot())
		if err != nil {
			return err
		}
		if !res.Selected {
			return fmt.Errorf("no worktree selected")
		}
		if res.Row.Path == "" {
			return fmt.Errorf("branch %q has no worktree, create one with 'twig add %s'", res.Row.Branch, res.Row.Branch)
		}
		output.FromContext(ctx).Println(res.Row.Path)
		return nil
	},
}

func init() {
	selectCmd.Flags().BoolVarP(&selectBranches, "branches", "b", false, "Include branches without a worktree")
	rootCmd.AddCommand(selectCmd)
}
