package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/twig-dev/twig/internal/cmd"
)

// GitHub implements Forge using the gh CLI.
type GitHub struct{}

// Name returns "github"
func (g *GitHub) Name() string {
	return "github"
}

// Check verifies that gh CLI is available and authenticated
func (g *GitHub) Check(ctx context.Context) error {
	if _, err := exec.LookPath("gh"); err != nil {
		return fmt.Errorf("gh not found: please install GitHub CLI (https://cli.github.com)")
	}
	if err := cmd.RunContext(ctx, "", "gh", "auth", "status"); err != nil {
		return fmt.Errorf("gh not authenticated: please run 'gh auth login'")
	}
	return nil
}

// PipelineStatus looks for an open PR on the branch first and falls
// back to the newest workflow run when the branch has an upstream.
//
// Uses `gh pr list --head` instead of `gh pr view` so all-digit branch
// names are not mistaken for PR numbers.
func (g *GitHub) PipelineStatus(ctx context.Context, repoPath, branch, localHead string, hasUpstream bool) (Status, error) {
	output, err := cmd.OutputContext(ctx, repoPath, "gh", "pr", "list",
		"--head", branch,
		"--limit", "1",
		"--json", "state,headRefOid,mergeStateStatus,statusCheckRollup,url")
	if err != nil {
		return Status{State: StateError}, fmt.Errorf("gh pr list failed: %w", err)
	}

	status, found, err := parseGitHubPRList(output, localHead)
	if err != nil {
		return Status{State: StateError}, err
	}
	if found {
		return status, nil
	}
	if !hasUpstream {
		return Status{State: StateNone}, nil
	}

	output, err = cmd.OutputContext(ctx, repoPath, "gh", "run", "list",
		"--branch", branch,
		"--limit", "1",
		"--json", "status,conclusion,headSha")
	if err != nil {
		return Status{State: StateError}, fmt.Errorf("gh run list failed: %w", err)
	}
	return parseGitHubRunList(output, localHead)
}

type githubPR struct {
	State            string        `json:"state"`
	HeadRefOid       string        `json:"headRefOid"`
	MergeStateStatus string        `json:"mergeStateStatus"`
	StatusCheck      []githubCheck `json:"statusCheckRollup"`
	URL              string        `json:"url"`
}

type githubCheck struct {
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// parseGitHubPRList interprets `gh pr list --json` output. Returns
// found=false when the branch has no open PR.
func parseGitHubPRList(output []byte, localHead string) (Status, bool, error) {
	var prs []githubPR
	if err := json.Unmarshal(output, &prs); err != nil {
		return Status{State: StateError}, false, fmt.Errorf("failed to parse gh pr list output: %w", err)
	}
	if len(prs) == 0 || prs[0].State != "OPEN" {
		return Status{State: StateNone}, false, nil
	}
	pr := prs[0]

	state := checkRollupState(pr.StatusCheck)
	// Conflicts take priority over check results.
	if pr.MergeStateStatus == "DIRTY" {
		state = StateConflicts
	}
	return Status{
		State:  state,
		Source: SourcePR,
		Stale:  pr.HeadRefOid != "" && pr.HeadRefOid != localHead,
		URL:    pr.URL,
	}, true, nil
}

// checkRollupState reduces a PR's check rollup to a single state.
// Priority: running > failed > passed.
func checkRollupState(checks []githubCheck) State {
	if len(checks) == 0 {
		return StateNone
	}
	var failed bool
	for _, c := range checks {
		switch c.Status {
		case "IN_PROGRESS", "QUEUED", "PENDING", "EXPECTED":
			return StateRunning
		}
		switch c.Conclusion {
		case "FAILURE", "ERROR", "CANCELLED":
			failed = true
		}
	}
	if failed {
		return StateFailed
	}
	return StatePassed
}

type githubRun struct {
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	HeadSha    string `json:"headSha"`
}

// parseGitHubRunList interprets `gh run list --json` output.
func parseGitHubRunList(output []byte, localHead string) (Status, error) {
	var runs []githubRun
	if err := json.Unmarshal(output, &runs); err != nil {
		return Status{State: StateError}, fmt.Errorf("failed to parse gh run list output: %w", err)
	}
	if len(runs) == 0 {
		return Status{State: StateNone}, nil
	}
	run := runs[0]

	var state State
	switch run.Status {
	case "in_progress", "queued", "pending", "waiting":
		state = StateRunning
	case "completed":
		switch run.Conclusion {
		case "success":
			state = StatePassed
		case "failure", "cancelled", "timed_out", "action_required":
			state = StateFailed
		default:
			state = StateNone
		}
	default:
		state = StateNone
	}
	return Status{
		State:  state,
		Source: SourceBranch,
		Stale:  run.HeadSha == "" || run.HeadSha != localHead,
	}, nil
}
