// Package gitrepo implements the branch and worktree operations the session
// engine is built on.
//
// Reads (refs, HEAD resolution, history walks) go through go-git. Mutations
// that go-git handles poorly go through the host git binary: checkout (go-git
// v5 checkout has long-standing index bugs), linked worktree add/remove (not
// supported by go-git), and clone (the library lacks a progress callback, and
// clone progress is the whole point of shelling out; see Clone). The two code
// paths are intentional and should not be unified.
package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// Open opens the repository at path, detecting .git from a worktree or
// subdirectory. Handles are cheap; callers open per call and do not hold
// them across suspension points.
func Open(repoPath string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, domain.NewGitOperationError("open", err)
	}
	return repo, nil
}

// IsEmpty reports whether the repository has no commits yet.
func IsEmpty(repo *git.Repository) bool {
	_, err := repo.Head()
	return err != nil
}

// HeadCommit resolves HEAD to a commit hash. An unresolvable HEAD (empty
// repository) is fatal for every caller, so it is returned as an error.
func HeadCommit(repo *git.Repository) (plumbing.Hash, error) {
	head, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, domain.NewGitOperationError("resolve HEAD", err)
	}
	return head.Hash(), nil
}

// CurrentBranch returns the short name of the checked-out branch, or "HEAD"
// when the repository is in a detached state.
func CurrentBranch(repo *git.Repository) (string, error) {
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", domain.NewGitOperationError("read HEAD", err)
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}
	return "HEAD", nil
}

// runGit runs the host git binary in dir and returns combined output.
// Locale pinned so output parsing and error matching are stable.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(cmd.Environ(), "LC_ALL=C")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, out)
	}
	return string(out), nil
}
