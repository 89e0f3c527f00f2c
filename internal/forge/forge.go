// Package forge queries git hosting services (GitHub, GitLab) for the
// CI pipeline state of a branch, using their official CLIs (gh, glab)
// so authentication is inherited from the user's existing setup.
package forge

import (
	"context"
)

// State classifies the CI pipeline of a branch.
type State string

const (
	// StatePassed means all checks completed successfully.
	StatePassed State = "passed"
	// StateRunning means at least one check is still pending.
	StateRunning State = "running"
	// StateFailed means at least one check failed or was cancelled.
	StateFailed State = "failed"
	// StateConflicts means the PR/MR cannot merge cleanly.
	StateConflicts State = "conflicts"
	// StateNone means the branch has no PR and no CI runs.
	StateNone State = "none"
	// StateError means the forge could not be queried (rate limit,
	// network failure). Distinct from StateNone so callers can degrade
	// rather than report "no CI".
	StateError State = "error"
)

// Source says where a status came from.
type Source string

const (
	// SourcePR means the status belongs to an open pull/merge request.
	SourcePR Source = "pr"
	// SourceBranch means the status comes from workflow or pipeline
	// runs on the branch itself, with no PR open.
	SourceBranch Source = "branch"
)

// Status is the CI state of one branch.
type Status struct {
	State  State
	Source Source
	// Stale is true when the reported status belongs to a commit other
	// than the local HEAD, e.g. after committing without pushing.
	Stale bool
	// URL links to the PR or pipeline page when the forge provides one.
	URL string
}

// Forge is a git hosting service queried through its CLI.
type Forge interface {
	// Name returns the forge name ("github" or "gitlab").
	Name() string

	// Check verifies the CLI is installed and authenticated.
	Check(ctx context.Context) error

	// PipelineStatus returns the CI status for a branch. localHead is
	// the branch's local commit hash, used to flag stale results.
	// hasUpstream gates the fallback to branch-level runs, which only
	// exist once the branch has been pushed.
	PipelineStatus(ctx context.Context, repoPath, branch, localHead string, hasUpstream bool) (Status, error)
}
