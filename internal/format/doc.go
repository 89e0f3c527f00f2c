// Package format handles worktree folder name generation and the URL
// column's template expansion.
//
// # Worktree folder names
//
// Folders are named by a configurable format string with placeholders
// substituted at creation time:
//
//   - {repo}: repository name from the git origin URL
//   - {branch}: branch name as provided to the command
//   - {folder}: folder name of the main checkout on disk
//
// The default format is "{repo}-{branch}", creating folders like
// "my-repo-feature-x". Branch and repo names are sanitized so branches
// like "feature/my-branch" become "feature-my-branch".
//
// # URL templates
//
// The url_template config expands per worktree with {branch} and
// {port}, where {port} is a stable per-branch port derived by hashing
// the branch name. This lets each worktree run its dev server on its
// own predictable port, e.g. "http://localhost:{port}".
package format
