package list

import (
	"context"

	"github.com/twig-dev/twig/internal/forge"
	"github.com/twig-dev/twig/internal/format"
	"github.com/twig-dev/twig/internal/git"
)

// TaskKind names the column group a task populates. Every cell group
// has exactly one producing task kind.
type TaskKind int

const (
	TaskAheadBehind TaskKind = iota
	TaskBranchDiff
	TaskWorkingDiff
	TaskStatus
	TaskOperation
	TaskUpstream
	TaskClassify
	TaskCI
	TaskConflicts
	TaskURL
)

func (k TaskKind) String() string {
	switch k {
	case TaskAheadBehind:
		return "ahead-behind"
	case TaskBranchDiff:
		return "branch-diff"
	case TaskWorkingDiff:
		return "working-diff"
	case TaskStatus:
		return "status"
	case TaskOperation:
		return "operation"
	case TaskUpstream:
		return "upstream"
	case TaskClassify:
		return "classify"
	case TaskCI:
		return "ci"
	case TaskConflicts:
		return "conflicts"
	case TaskURL:
		return "url"
	}
	return "unknown"
}

// Task is one unit of background work: it fills exactly one cell group
// on exactly one row, identified by stable index.
type Task struct {
	Row  int
	Kind TaskKind
	// Network marks tasks bound by the network rather than local git.
	// The scheduler dispatches these last.
	Network bool

	run func(ctx context.Context) Result
}

// Result is a task outcome. The apply closure carries the computed
// value; it is executed only by the aggregator's drain loop, never by
// the task goroutine, so the model keeps a single writer.
type Result struct {
	Row  int
	Kind TaskKind
	Err  error

	apply func(r *Row)
}

// refFor returns the ref to compare for a row: the branch name, or the
// raw head commit for detached worktrees.
func refFor(r *Row) string {
	if r.Detached || r.Branch == git.DetachedBranch {
		return r.Head
	}
	return r.Branch
}

// EnumerateTasks builds the full task set for the model. Feature gates:
// CI and merge-conflict tasks only in full mode (network/expensive),
// the URL task only when a template is configured. Prunable rows and
// no-commit rows get no tasks at all.
func EnumerateTasks(m *Model, ops GitOps, opts Options, f forge.Forge) []Task {
	var tasks []Task
	repo := m.RepoPath
	primary := m.PrimaryBranch

	for _, row := range m.Rows {
		if row.Prunable {
			continue
		}
		if cls, done := row.Class.Value(); done && cls == ClassNoCommits {
			// Nothing to query for a repository without commits.
			continue
		}
		r := row
		ref := refFor(r)

		if !r.Primary {
			tasks = append(tasks,
				Task{Row: r.Index, Kind: TaskAheadBehind, run: func(ctx context.Context) Result {
					ahead, behind, err := ops.AheadBehind(ctx, repo, primary, ref)
					return result(r.Index, TaskAheadBehind, err, func(row *Row) {
						row.Main.Set(Divergence{Ahead: ahead, Behind: behind})
					})
				}},
				Task{Row: r.Index, Kind: TaskBranchDiff, run: func(ctx context.Context) Result {
					stats, err := ops.BranchDiff(ctx, repo, primary, ref)
					return result(r.Index, TaskBranchDiff, err, func(row *Row) {
						row.Diff.Set(stats)
					})
				}},
				Task{Row: r.Index, Kind: TaskClassify, run: func(ctx context.Context) Result {
					match, err := ops.TreesMatch(ctx, repo, primary, ref)
					return result(r.Index, TaskClassify, err, func(row *Row) {
						if match {
							row.Class.Set(ClassMatchesMain)
						} else {
							row.Class.Set(ClassNormal)
						}
					})
				}},
			)
			if opts.Full {
				tasks = append(tasks, Task{Row: r.Index, Kind: TaskConflicts, run: func(ctx context.Context) Result {
					conflicts, err := ops.MergeConflicts(ctx, repo, primary, ref)
					return result(r.Index, TaskConflicts, err, func(row *Row) {
						row.Conflicts.Set(conflicts)
					})
				}})
			}
		}

		if r.HasWorktree() {
			path := r.Path
			tasks = append(tasks,
				Task{Row: r.Index, Kind: TaskStatus, run: func(ctx context.Context) Result {
					status, err := ops.WorktreeStatus(ctx, path)
					return result(r.Index, TaskStatus, err, func(row *Row) {
						row.Status.Set(status)
					})
				}},
				Task{Row: r.Index, Kind: TaskWorkingDiff, run: func(ctx context.Context) Result {
					stats, err := ops.WorkingTreeDiff(ctx, path)
					return result(r.Index, TaskWorkingDiff, err, func(row *Row) {
						row.Working.Set(stats)
					})
				}},
				Task{Row: r.Index, Kind: TaskOperation, run: func(ctx context.Context) Result {
					op, err := ops.CurrentOperation(ctx, path)
					return result(r.Index, TaskOperation, err, func(row *Row) {
						row.Op.Set(op)
					})
				}},
				Task{Row: r.Index, Kind: TaskUpstream, run: func(ctx context.Context) Result {
					info, err := upstreamInfo(ctx, ops, repo, path, ref)
					return result(r.Index, TaskUpstream, err, func(row *Row) {
						row.Upstream.Set(info)
					})
				}},
			)
		} else if r.upstreamHint != "" {
			hint := r.upstreamHint
			tasks = append(tasks, Task{Row: r.Index, Kind: TaskUpstream, run: func(ctx context.Context) Result {
				ahead, behind, err := ops.AheadBehind(ctx, repo, hint, ref)
				return result(r.Index, TaskUpstream, err, func(row *Row) {
					row.Upstream.Set(UpstreamInfo{Name: hint, Divergence: Divergence{Ahead: ahead, Behind: behind}})
				})
			}})
		}

		if opts.Full && f != nil && !r.Detached && r.Kind != KindRemote {
			branch := r.Branch
			head := r.Head
			hasUpstream := r.upstreamHint != ""
			path := r.Path
			tasks = append(tasks, Task{Row: r.Index, Kind: TaskCI, Network: true, run: func(ctx context.Context) Result {
				up := hasUpstream
				if path != "" {
					if name, err := ops.Upstream(ctx, path); err == nil && name != "" {
						up = true
					}
				}
				status, err := f.PipelineStatus(ctx, repo, branch, head, up)
				return result(r.Index, TaskCI, err, func(row *Row) {
					row.CI.Set(status)
				})
			}})
		}

		if opts.URLTemplate != "" && !r.Detached && r.Kind != KindRemote {
			branch := r.Branch
			tasks = append(tasks, Task{Row: r.Index, Kind: TaskURL, run: func(ctx context.Context) Result {
				url := format.ExpandURL(opts.URLTemplate, branch)
				active := ops.PortActive(url)
				return result(r.Index, TaskURL, nil, func(row *Row) {
					row.URL.Set(URLInfo{URL: url, Active: &active})
				})
			}})
		}
	}
	return tasks
}

// upstreamInfo resolves the tracking branch of a worktree and its
// divergence in one task.
func upstreamInfo(ctx context.Context, ops GitOps, repo, path, ref string) (UpstreamInfo, error) {
	name, err := ops.Upstream(ctx, path)
	if err != nil {
		return UpstreamInfo{}, err
	}
	if name == "" {
		return UpstreamInfo{}, nil
	}
	ahead, behind, err := ops.AheadBehind(ctx, repo, name, ref)
	if err != nil {
		return UpstreamInfo{}, err
	}
	return UpstreamInfo{Name: name, Divergence: Divergence{Ahead: ahead, Behind: behind}}, nil
}

func result(row int, kind TaskKind, err error, apply func(r *Row)) Result {
	if err != nil {
		return Result{Row: row, Kind: kind, Err: err}
	}
	return Result{Row: row, Kind: kind, apply: apply}
}
