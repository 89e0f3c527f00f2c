// Package cmd provides helpers for executing shell commands with proper error handling.
//
// This package wraps [os/exec.Cmd] to capture stderr and include it in error
// messages, making command failures more informative for users.
//
// # Design Notes
//
// twig shells out to the git/gh/glab CLIs rather than using Go libraries.
// This approach is simpler, more reliable, and ensures compatibility with
// user configurations (SSH keys, credential helpers, aliases).
//
// All execution goes through [RunContext] and [OutputContext], which honor
// context cancellation and deadlines. Background listing tasks depend on
// this: a timed-out or cancelled task must not leave a subprocess running.
package cmd
