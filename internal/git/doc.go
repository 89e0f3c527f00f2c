// Package git wraps the git CLI for inventory and per-worktree queries.
//
// All functions shell out to the system git binary rather than using a
// reimplementation, so behavior always matches what the user sees when
// running git by hand. Functions take a context so long-running queries
// (fetches, diffs against large histories) can be cancelled or bounded
// by a deadline.
//
// The package splits into two layers. Inventory functions answer "what
// exists" with a constant number of git invocations regardless of how
// many worktrees or branches the repository has. Query functions answer
// per-ref questions (ahead/behind counts, diff stats, merge conflicts)
// and are meant to run concurrently, one goroutine per row.
package git
