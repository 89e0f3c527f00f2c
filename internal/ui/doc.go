// Package ui holds the interactive terminal components: the fuzzy
// worktree picker and confirmation prompts. Everything here runs a
// bubbletea program and therefore requires a TTY; callers fall back to
// non-interactive behavior when stdout is piped.
package ui
