package format

import "testing"

func TestWorktreeName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		format string
		params WorktreeParams
		want   string
	}{
		{"{repo}-{branch}", WorktreeParams{Repo: "widget", Branch: "feat"}, "widget-feat"},
		{"{repo}-{branch}", WorktreeParams{Repo: "widget", Branch: "feature/login"}, "widget-feature-login"},
		{"{branch}", WorktreeParams{Branch: "fix"}, "fix"},
		{"{folder}.{branch}", WorktreeParams{Folder: "app", Branch: "x"}, "app.x"},
	}
	for _, tt := range tests {
		if got := WorktreeName(tt.format, tt.params); got != tt.want {
			t.Errorf("WorktreeName(%q, %+v) = %q, want %q", tt.format, tt.params, got, tt.want)
		}
	}
}

func TestValidateWorktreeFormat(t *testing.T) {
	t.Parallel()
	if err := ValidateWorktreeFormat("{repo}-{branch}"); err != nil {
		t.Errorf("valid format = %v, want nil", err)
	}
	if err := ValidateWorktreeFormat("{nope}"); err == nil {
		t.Error("unknown placeholder = nil, want error")
	}
	if err := ValidateWorktreeFormat("static-name"); err == nil {
		t.Error("no placeholder = nil, want error")
	}
}

func TestSanitizeForPath(t *testing.T) {
	t.Parallel()
	if got := SanitizeForPath(`a/b\c:d*e?f"g<h>i|j`); got != "a-b-c-d-e-f-g-h-i-j" {
		t.Errorf("SanitizeForPath = %q", got)
	}
}
