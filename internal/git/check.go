package git

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = fmt.Errorf("git not found: please install git (https://git-scm.com)")

// NotARepositoryError indicates a path is not inside a git repository.
type NotARepositoryError struct {
	Path string
}

func (e *NotARepositoryError) Error() string {
	if e.Path == "" {
		return "not inside a git repository"
	}
	return fmt.Sprintf("%s is not inside a git repository", e.Path)
}

// CheckGit verifies that git is available in PATH
func CheckGit() error {
	_, err := exec.LookPath("git")
	if err != nil {
		return ErrGitNotFound
	}
	return nil
}

// IsInsideRepo returns true if the given path is inside a git repository.
// An empty path means the current working directory.
func IsInsideRepo(ctx context.Context, path string) bool {
	return runGit(ctx, path, "rev-parse", "--is-inside-work-tree") == nil
}

// Toplevel returns the root directory of the worktree containing path.
// An empty path means the current working directory.
func Toplevel(ctx context.Context, path string) (string, error) {
	output, err := outputGit(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", &NotARepositoryError{Path: path}
	}
	return strings.TrimSpace(string(output)), nil
}

// CommonDir returns the shared .git directory of the repository containing
// path. For a linked worktree this is the main repository's .git directory,
// so filepath.Dir of the result is the main repository path.
func CommonDir(ctx context.Context, path string) (string, error) {
	output, err := outputGit(ctx, path, "rev-parse", "--path-format=absolute", "--git-common-dir")
	if err != nil {
		return "", &NotARepositoryError{Path: path}
	}
	return strings.TrimSpace(string(output)), nil
}

// MainRepoPath returns the main repository's working directory from any
// path inside the repository, whether that path is the main checkout or a
// linked worktree.
func MainRepoPath(ctx context.Context, path string) (string, error) {
	common, err := CommonDir(ctx, path)
	if err != nil {
		return "", err
	}
	if filepath.Base(common) != ".git" {
		// Bare repository, the common dir is the repository itself.
		return common, nil
	}
	return filepath.Dir(common), nil
}
