package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/twig-dev/twig/internal/cmd"
)

// GitLab implements Forge using the glab CLI.
type GitLab struct{}

// Name returns "gitlab"
func (g *GitLab) Name() string {
	return "gitlab"
}

// Check verifies that glab CLI is available and authenticated
func (g *GitLab) Check(ctx context.Context) error {
	if _, err := exec.LookPath("glab"); err != nil {
		return fmt.Errorf("glab not found: please install GitLab CLI (https://gitlab.com/gitlab-org/cli)")
	}
	if err := cmd.RunContext(ctx, "", "glab", "auth", "status"); err != nil {
		return fmt.Errorf("glab not authenticated: please run 'glab auth login'")
	}
	return nil
}

// PipelineStatus looks for an open MR with the branch as source first
// and falls back to the newest pipeline when the branch has an upstream.
func (g *GitLab) PipelineStatus(ctx context.Context, repoPath, branch, localHead string, hasUpstream bool) (Status, error) {
	output, err := cmd.OutputContext(ctx, repoPath, "glab", "mr", "list",
		"--source-branch", branch,
		"--state=opened",
		"--per-page=1",
		"--output", "json")
	if err != nil {
		return Status{State: StateError}, fmt.Errorf("glab mr list failed: %w", err)
	}

	status, found, err := parseGitLabMRList(output, localHead)
	if err != nil {
		return Status{State: StateError}, err
	}
	if found {
		return status, nil
	}
	if !hasUpstream {
		return Status{State: StateNone}, nil
	}

	env, args := pipelineListInvocation(branch)
	output, err = cmd.OutputEnvContext(ctx, repoPath, env, "glab", args...)
	if err != nil {
		return Status{State: StateError}, fmt.Errorf("glab ci list failed: %w", err)
	}
	return parseGitLabPipelineList(output, localHead)
}

// pipelineListInvocation builds the branch-level pipeline query. glab
// ci list has no branch flag; it reads the BRANCH environment variable,
// so without it the newest pipeline of any branch would come back.
func pipelineListInvocation(branch string) (env, args []string) {
	env = []string{"BRANCH=" + branch}
	args = []string{"ci", "list", "--per-page", "1", "--output", "json"}
	return env, args
}

type gitlabMR struct {
	SHA                 string          `json:"sha"`
	HasConflicts        bool            `json:"has_conflicts"`
	DetailedMergeStatus string          `json:"detailed_merge_status"`
	HeadPipeline        *gitlabPipeline `json:"head_pipeline"`
	Pipeline            *gitlabPipeline `json:"pipeline"`
	WebURL              string          `json:"web_url"`
}

type gitlabPipeline struct {
	Status string `json:"status"`
	SHA    string `json:"sha"`
	WebURL string `json:"web_url"`
}

// parseGitLabMRList interprets `glab mr list --output json` output.
// Returns found=false when the branch has no open MR.
func parseGitLabMRList(output []byte, localHead string) (Status, bool, error) {
	var mrs []gitlabMR
	if err := json.Unmarshal(output, &mrs); err != nil {
		return Status{State: StateError}, false, fmt.Errorf("failed to parse glab mr list output: %w", err)
	}
	if len(mrs) == 0 {
		return Status{State: StateNone}, false, nil
	}
	mr := mrs[0]

	var state State
	switch {
	case mr.HasConflicts || mr.DetailedMergeStatus == "conflict":
		state = StateConflicts
	case mr.DetailedMergeStatus == "ci_still_running":
		state = StateRunning
	case mr.DetailedMergeStatus == "ci_must_pass":
		state = StateFailed
	default:
		pipeline := mr.HeadPipeline
		if pipeline == nil {
			pipeline = mr.Pipeline
		}
		if pipeline == nil {
			state = StateNone
		} else {
			state = gitlabPipelineState(pipeline.Status)
		}
	}
	return Status{
		State:  state,
		Source: SourcePR,
		Stale:  mr.SHA != "" && mr.SHA != localHead,
		URL:    mr.WebURL,
	}, true, nil
}

// parseGitLabPipelineList interprets `glab ci list --output json` output.
func parseGitLabPipelineList(output []byte, localHead string) (Status, error) {
	var pipelines []gitlabPipeline
	if err := json.Unmarshal(output, &pipelines); err != nil {
		return Status{State: StateError}, fmt.Errorf("failed to parse glab ci list output: %w", err)
	}
	if len(pipelines) == 0 {
		return Status{State: StateNone}, nil
	}
	p := pipelines[0]
	return Status{
		State:  gitlabPipelineState(p.Status),
		Source: SourceBranch,
		Stale:  p.SHA != "" && p.SHA != localHead,
		URL:    p.WebURL,
	}, nil
}

func gitlabPipelineState(status string) State {
	switch status {
	case "running", "pending", "preparing", "waiting_for_resource", "created", "scheduled":
		return StateRunning
	case "failed", "canceled", "manual":
		return StateFailed
	case "success":
		return StatePassed
	}
	return StateNone
}
