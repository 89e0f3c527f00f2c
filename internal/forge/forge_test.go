package forge

import "testing"

func TestParseGitHubPRList(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		json      string
		wantState State
		wantFound bool
		wantStale bool
	}{
		{
			name:      "no PR",
			json:      `[]`,
			wantState: StateNone,
			wantFound: false,
		},
		{
			name:      "closed PR ignored",
			json:      `[{"state":"MERGED","headRefOid":"abc","url":"https://github.com/a/b/pull/1"}]`,
			wantState: StateNone,
			wantFound: false,
		},
		{
			name:      "passed checks",
			json:      `[{"state":"OPEN","headRefOid":"abc","statusCheckRollup":[{"status":"COMPLETED","conclusion":"SUCCESS"}],"url":"u"}]`,
			wantState: StatePassed,
			wantFound: true,
		},
		{
			name:      "running takes priority over failure",
			json:      `[{"state":"OPEN","headRefOid":"abc","statusCheckRollup":[{"status":"IN_PROGRESS"},{"status":"COMPLETED","conclusion":"FAILURE"}],"url":"u"}]`,
			wantState: StateRunning,
			wantFound: true,
		},
		{
			name:      "failed check",
			json:      `[{"state":"OPEN","headRefOid":"abc","statusCheckRollup":[{"status":"COMPLETED","conclusion":"FAILURE"},{"status":"COMPLETED","conclusion":"SUCCESS"}],"url":"u"}]`,
			wantState: StateFailed,
			wantFound: true,
		},
		{
			name:      "conflicts beat checks",
			json:      `[{"state":"OPEN","headRefOid":"abc","mergeStateStatus":"DIRTY","statusCheckRollup":[{"status":"COMPLETED","conclusion":"SUCCESS"}],"url":"u"}]`,
			wantState: StateConflicts,
			wantFound: true,
		},
		{
			name:      "no checks",
			json:      `[{"state":"OPEN","headRefOid":"abc","url":"u"}]`,
			wantState: StateNone,
			wantFound: true,
		},
		{
			name:      "stale head",
			json:      `[{"state":"OPEN","headRefOid":"other","statusCheckRollup":[{"status":"COMPLETED","conclusion":"SUCCESS"}],"url":"u"}]`,
			wantState: StatePassed,
			wantFound: true,
			wantStale: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, found, err := parseGitHubPRList([]byte(tt.json), "abc")
			if err != nil {
				t.Fatalf("parseGitHubPRList = %v", err)
			}
			if found != tt.wantFound {
				t.Errorf("found = %v, want %v", found, tt.wantFound)
			}
			if status.State != tt.wantState {
				t.Errorf("state = %q, want %q", status.State, tt.wantState)
			}
			if status.Stale != tt.wantStale {
				t.Errorf("stale = %v, want %v", status.Stale, tt.wantStale)
			}
		})
	}
}

func TestParseGitHubPRList_BadJSON(t *testing.T) {
	t.Parallel()
	if _, _, err := parseGitHubPRList([]byte("not json"), "abc"); err == nil {
		t.Error("parseGitHubPRList(bad json) = nil, want error")
	}
}

func TestParseGitHubRunList(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		json      string
		wantState State
		wantStale bool
	}{
		{"no runs", `[]`, StateNone, false},
		{"running", `[{"status":"in_progress","headSha":"abc"}]`, StateRunning, false},
		{"passed", `[{"status":"completed","conclusion":"success","headSha":"abc"}]`, StatePassed, false},
		{"failed", `[{"status":"completed","conclusion":"failure","headSha":"abc"}]`, StateFailed, false},
		{"skipped", `[{"status":"completed","conclusion":"skipped","headSha":"abc"}]`, StateNone, false},
		{"stale run", `[{"status":"completed","conclusion":"success","headSha":"old"}]`, StatePassed, true},
		{"missing sha is stale", `[{"status":"completed","conclusion":"success"}]`, StatePassed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, err := parseGitHubRunList([]byte(tt.json), "abc")
			if err != nil {
				t.Fatalf("parseGitHubRunList = %v", err)
			}
			if status.State != tt.wantState {
				t.Errorf("state = %q, want %q", status.State, tt.wantState)
			}
			if status.Stale != tt.wantStale {
				t.Errorf("stale = %v, want %v", status.Stale, tt.wantStale)
			}
		})
	}
}

func TestParseGitLabMRList(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		json      string
		wantState State
		wantFound bool
	}{
		{"no MR", `[]`, StateNone, false},
		{
			"conflicts",
			`[{"sha":"abc","has_conflicts":true}]`,
			StateConflicts, true,
		},
		{
			"detailed status conflict",
			`[{"sha":"abc","detailed_merge_status":"conflict"}]`,
			StateConflicts, true,
		},
		{
			"ci still running",
			`[{"sha":"abc","detailed_merge_status":"ci_still_running"}]`,
			StateRunning, true,
		},
		{
			"pipeline success",
			`[{"sha":"abc","head_pipeline":{"status":"success"}}]`,
			StatePassed, true,
		},
		{
			"fallback pipeline field",
			`[{"sha":"abc","pipeline":{"status":"failed"}}]`,
			StateFailed, true,
		},
		{
			"no pipeline",
			`[{"sha":"abc"}]`,
			StateNone, true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, found, err := parseGitLabMRList([]byte(tt.json), "abc")
			if err != nil {
				t.Fatalf("parseGitLabMRList = %v", err)
			}
			if found != tt.wantFound {
				t.Errorf("found = %v, want %v", found, tt.wantFound)
			}
			if status.State != tt.wantState {
				t.Errorf("state = %q, want %q", status.State, tt.wantState)
			}
		})
	}
}

func TestGitLabPipelineListInvocation(t *testing.T) {
	t.Parallel()
	env, args := pipelineListInvocation("feature-x")
	if len(env) != 1 || env[0] != "BRANCH=feature-x" {
		t.Errorf("env = %v, want the query scoped to BRANCH=feature-x", env)
	}
	want := []string{"ci", "list", "--per-page", "1", "--output", "json"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args = %v, want %v", args, want)
		}
	}
}

func TestParseGitLabPipelineList(t *testing.T) {
	t.Parallel()
	status, err := parseGitLabPipelineList([]byte(`[{"status":"running","sha":"abc","web_url":"u"}]`), "abc")
	if err != nil {
		t.Fatalf("parseGitLabPipelineList = %v", err)
	}
	if status.State != StateRunning || status.Stale {
		t.Errorf("status = %+v, want running and not stale", status)
	}

	status, err = parseGitLabPipelineList([]byte(`[{"status":"success","sha":"old"}]`), "abc")
	if err != nil {
		t.Fatalf("parseGitLabPipelineList = %v", err)
	}
	if !status.Stale {
		t.Error("stale = false for mismatched sha, want true")
	}
}
