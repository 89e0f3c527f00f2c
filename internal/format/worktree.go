package format

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidPlaceholders lists all supported placeholders
var ValidPlaceholders = []string{"{repo}", "{branch}", "{folder}"}

// WorktreeParams contains the values for placeholder substitution
type WorktreeParams struct {
	Repo   string // repo name from git remote get-url origin
	Branch string // branch name as provided
	Folder string // folder name of the main checkout on disk
}

// placeholderRegex matches {placeholder-name} patterns
var placeholderRegex = regexp.MustCompile(`\{[a-z-]+\}`)

// ValidateWorktreeFormat checks if a format string is valid.
// Returns error if format contains unknown placeholders or none at all.
func ValidateWorktreeFormat(format string) error {
	for _, match := range placeholderRegex.FindAllString(format, -1) {
		if !isValidPlaceholder(match) {
			return fmt.Errorf("unknown placeholder %q in format %q (valid: %s)",
				match, format, strings.Join(ValidPlaceholders, ", "))
		}
	}
	for _, p := range ValidPlaceholders {
		if strings.Contains(format, p) {
			return nil
		}
	}
	return fmt.Errorf("format %q must contain at least one placeholder (%s)",
		format, strings.Join(ValidPlaceholders, ", "))
}

func isValidPlaceholder(placeholder string) bool {
	for _, valid := range ValidPlaceholders {
		if placeholder == valid {
			return true
		}
	}
	return false
}

// WorktreeName applies the format template to generate a worktree folder name
func WorktreeName(format string, params WorktreeParams) string {
	result := format
	result = strings.ReplaceAll(result, "{repo}", SanitizeForPath(params.Repo))
	result = strings.ReplaceAll(result, "{branch}", SanitizeForPath(params.Branch))
	result = strings.ReplaceAll(result, "{folder}", SanitizeForPath(params.Folder))
	return result
}

// SanitizeForPath replaces characters that are problematic in file paths
// Replaces: / \ : * ? " < > | with -
func SanitizeForPath(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
	)
	return replacer.Replace(name)
}
