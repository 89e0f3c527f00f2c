package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DetachedBranch is the branch name reported for a worktree whose HEAD
// does not point at a branch.
const DetachedBranch = "(detached)"

// Worktree describes one entry from git worktree list --porcelain.
type Worktree struct {
	Path        string
	Branch      string // DetachedBranch when HEAD is detached
	Head        string // full commit hash, empty for a bare entry
	Bare        bool
	Detached    bool
	Locked      bool
	LockReason  string
	Prunable    bool
	PruneReason string
}

// ListWorktrees returns all worktrees of the repository at repoPath in
// the order git reports them (main worktree first).
func ListWorktrees(ctx context.Context, repoPath string) ([]Worktree, error) {
	output, err := outputGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	return parseWorktreeList(string(output)), nil
}

// parseWorktreeList parses `git worktree list --porcelain` output.
// Entries are separated by blank lines; attribute lines may carry a
// value after a space (e.g. "locked reason") or stand alone.
func parseWorktreeList(out string) []Worktree {
	var worktrees []Worktree
	var cur Worktree
	var open bool

	flush := func() {
		if open {
			worktrees = append(worktrees, cur)
			cur = Worktree{}
			open = false
		}
	}

	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur.Path = strings.TrimPrefix(line, "worktree ")
			open = true
		case strings.HasPrefix(line, "HEAD "):
			// Git prints an all-zeros hash for an unborn branch
			// (fresh init, no commits). Leave Head empty so callers
			// can tell there is nothing to resolve.
			if h := strings.TrimPrefix(line, "HEAD "); !isZeroHash(h) {
				cur.Head = h
			}
		case strings.HasPrefix(line, "branch refs/heads/"):
			cur.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "bare":
			cur.Bare = true
		case line == "detached":
			cur.Detached = true
			cur.Branch = DetachedBranch
		case line == "locked":
			cur.Locked = true
		case strings.HasPrefix(line, "locked "):
			cur.Locked = true
			cur.LockReason = strings.TrimPrefix(line, "locked ")
		case line == "prunable":
			cur.Prunable = true
		case strings.HasPrefix(line, "prunable "):
			cur.Prunable = true
			cur.PruneReason = strings.TrimPrefix(line, "prunable ")
		}
	}
	flush()
	return worktrees
}

func isZeroHash(h string) bool {
	return h != "" && strings.Trim(h, "0") == ""
}

// Branch describes one local or remote-tracking branch.
type Branch struct {
	Name     string // short name, e.g. "feature-x" or "origin/feature-x"
	Head     string // full commit hash
	Upstream string // short upstream name, empty if none configured
}

// refFormat asks for-each-ref to emit NUL-separated fields so branch
// names and upstreams can contain spaces without breaking the parse.
const refFormat = "%(refname:short)%00%(objectname)%00%(upstream:short)"

// LocalBranches returns all local branches in one git call.
func LocalBranches(ctx context.Context, repoPath string) ([]Branch, error) {
	output, err := outputGit(ctx, repoPath, "for-each-ref", "--format="+refFormat, "refs/heads")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return parseBranches(string(output)), nil
}

// RemoteBranches returns all remote-tracking branches in one git call.
// The symbolic HEAD entries (e.g. origin/HEAD) are skipped.
func RemoteBranches(ctx context.Context, repoPath string) ([]Branch, error) {
	output, err := outputGit(ctx, repoPath, "for-each-ref", "--format="+refFormat, "refs/remotes")
	if err != nil {
		return nil, fmt.Errorf("failed to list remote branches: %w", err)
	}
	var branches []Branch
	for _, b := range parseBranches(string(output)) {
		if strings.HasSuffix(b.Name, "/HEAD") {
			continue
		}
		branches = append(branches, b)
	}
	return branches, nil
}

func parseBranches(out string) []Branch {
	var branches []Branch
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\x00")
		if len(fields) < 2 {
			continue
		}
		b := Branch{Name: fields[0], Head: fields[1]}
		if len(fields) > 2 {
			b.Upstream = fields[2]
		}
		branches = append(branches, b)
	}
	return branches
}

// Commit holds the details of a single commit.
type Commit struct {
	Hash    string
	Time    time.Time
	Subject string
}

// CommitDetails resolves commit hash, author time, and subject for all
// given refs with a single git call. The result maps each requested ref
// to its commit; refs that do not resolve are absent from the map.
func CommitDetails(ctx context.Context, repoPath string, refs []string) (map[string]Commit, error) {
	if len(refs) == 0 {
		return map[string]Commit{}, nil
	}
	args := []string{"rev-parse"}
	args = append(args, refs...)
	output, err := outputGit(ctx, repoPath, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve refs: %w", err)
	}
	hashes := strings.Fields(string(output))
	if len(hashes) != len(refs) {
		return nil, fmt.Errorf("resolved %d of %d refs", len(hashes), len(refs))
	}

	logArgs := []string{"show", "-s", "--format=%H%x00%ct%x00%s"}
	logArgs = append(logArgs, hashes...)
	output, err = outputGit(ctx, repoPath, logArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to read commits: %w", err)
	}
	byHash := parseCommitLines(string(output))

	details := make(map[string]Commit, len(refs))
	for i, ref := range refs {
		if c, ok := byHash[hashes[i]]; ok {
			details[ref] = c
		}
	}
	return details, nil
}

func parseCommitLines(out string) map[string]Commit {
	commits := make(map[string]Commit)
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\x00", 3)
		if len(fields) != 3 {
			continue
		}
		ts, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		commits[fields[0]] = Commit{
			Hash:    fields[0],
			Time:    time.Unix(ts, 0),
			Subject: fields[2],
		}
	}
	return commits
}

// DefaultBranch returns the repository's primary branch name, preferring
// the remote HEAD and falling back to common names.
func DefaultBranch(ctx context.Context, repoPath string) string {
	output, err := outputGit(ctx, repoPath, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		ref := strings.TrimSpace(string(output))
		if name, ok := strings.CutPrefix(ref, "refs/remotes/origin/"); ok && name != "" {
			return name
		}
	}
	for _, name := range []string{"main", "master"} {
		if runGit(ctx, repoPath, "rev-parse", "--verify", "--quiet", "refs/heads/"+name) == nil {
			return name
		}
	}
	return "main"
}

// OriginURL returns the URL of the origin remote.
func OriginURL(ctx context.Context, repoPath string) (string, error) {
	output, err := outputGit(ctx, repoPath, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("failed to get origin URL: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// RepoName extracts the repository name from the origin URL, falling
// back to the main worktree's folder name when no origin is configured.
func RepoName(url string) string {
	url = strings.TrimSuffix(strings.TrimSpace(url), ".git")
	url = strings.TrimSuffix(url, "/")
	if idx := strings.LastIndexAny(url, "/:"); idx != -1 {
		url = url[idx+1:]
	}
	return url
}
