package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/twig-dev/twig/internal/list"
)

var listFlags struct {
	branches        bool
	remotes         bool
	full            bool
	includePrunable bool
	skeleton        bool
	jsonOut         bool
	tsvOut          bool
	jobs            int
	timeout         time.Duration
	progress        bool
	noProgress      bool
	urlTemplate     string
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	GroupID: GroupCore,
	Short:   "List worktrees with live status columns",
	Long: `List all worktrees of the current repository.

The table paints immediately with what a plain worktree enumeration
knows. Divergence, diffs, working tree status and (with --full) CI
state stream in as git answers, each cell independently. A cell whose
query fails shows "?" instead of failing the listing.

When stdout is not a terminal the command waits until every cell
settled and prints one stable table, suitable for pipes.

Examples:
  twig list                 # worktrees of this repo
  twig list --branches      # include branches without a worktree
  twig list --full          # add CI status and merge conflict checks
  twig list --json | jq .   # machine-readable output
  twig list --skeleton      # only the instant first paint`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := listOptions()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		repoPath, currentPath, err := repoContext(ctx)
		if err != nil {
			return err
		}
		opts.RepoPath = repoPath
		opts.CurrentPath = currentPath
		return list.Run(ctx, opts)
	},
}

// listOptions merges config defaults with command line flags.
func listOptions() (list.Options, error) {
	if listFlags.jsonOut && listFlags.tsvOut {
		return list.Options{}, fmt.Errorf("--json and --tsv are mutually exclusive")
	}

	opts := list.Options{
		Branches:        listFlags.branches,
		Remotes:         listFlags.remotes,
		Full:            listFlags.full,
		IncludePrunable: listFlags.includePrunable || cfg.List.IncludePrunable,
		SkeletonOnly:    listFlags.skeleton,
		Hosts:           cfg.Hosts,
		Jobs:            cfg.List.Jobs,
		TaskTimeout:     cfg.TaskTimeout(),
		URLTemplate:     cfg.List.URLTemplate,
	}
	if listFlags.jobs > 0 {
		opts.Jobs = listFlags.jobs
	}
	if listFlags.timeout > 0 {
		opts.TaskTimeout = listFlags.timeout
	}
	if listFlags.urlTemplate != "" {
		opts.URLTemplate = listFlags.urlTemplate
	}
	switch {
	case listFlags.jsonOut:
		opts.Format = list.FormatJSON
	case listFlags.tsvOut:
		opts.Format = list.FormatTSV
	}
	switch {
	case listFlags.noProgress:
		opts.Progress = list.ProgressNever
	case listFlags.progress:
		opts.Progress = list.ProgressAlways
	}
	return opts, nil
}

func init() {
	f := listCmd.Flags()
	f.BoolVarP(&listFlags.branches, "branches", "b", false, "Include local branches without a worktree")
	f.BoolVarP(&listFlags.remotes, "remotes", "r", false, "Include remote branches without a local branch")
	f.BoolVar(&listFlags.full, "full", false, "Include CI status and merge conflict checks")
	f.BoolVar(&listFlags.includePrunable, "include-prunable", false, "Show worktrees whose directory is gone")
	f.BoolVar(&listFlags.skeleton, "skeleton", false, "Paint the placeholder table and exit")
	f.BoolVar(&listFlags.jsonOut, "json", false, "Output as JSON")
	f.BoolVar(&listFlags.tsvOut, "tsv", false, "Output as tab-separated values")
	f.IntVar(&listFlags.jobs, "jobs", 0, "Concurrent status queries (default from config, 8)")
	f.DurationVar(&listFlags.timeout, "timeout", 0, "Per-query timeout (default from config, 10s)")
	f.BoolVar(&listFlags.progress, "progress", false, "Force in-place repaints even when piped")
	f.BoolVar(&listFlags.noProgress, "no-progress", false, "Wait for all data and print once")
	f.StringVar(&listFlags.urlTemplate, "url", "", "URL template for the URL column, e.g. http://localhost:{port}")
	listCmd.MarkFlagsMutuallyExclusive("progress", "no-progress")
	listCmd.MarkFlagsMutuallyExclusive("json", "tsv")

	rootCmd.AddCommand(listCmd)
}
