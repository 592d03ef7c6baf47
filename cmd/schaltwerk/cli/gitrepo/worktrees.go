package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// AddWorktree materializes branch into an isolated working directory at
// worktreePath. The branch must already exist (EnsureBranchAtHead or
// CreateBranchAt). Fails with ErrWorktreeExists when the path is already
// occupied.
func AddWorktree(ctx context.Context, repoPath, worktreePath, branch string) error {
	if _, err := os.Stat(worktreePath); err == nil {
		return domain.ErrWorktreeExists
	}
	if err := os.MkdirAll(filepath.Dir(worktreePath), 0o750); err != nil {
		return &domain.IoError{Operation: "mkdir", Path: filepath.Dir(worktreePath), Err: err}
	}
	if _, err := runGit(ctx, repoPath, "worktree", "add", worktreePath, branch); err != nil {
		return domain.NewGitOperationError("worktree add", err)
	}
	return nil
}

// RemoveWorktree retires a session worktree, discarding uncommitted changes,
// and prunes stale bookkeeping. Removing a worktree that is already gone is
// not an error.
func RemoveWorktree(ctx context.Context, repoPath, worktreePath string) error {
	if _, err := os.Stat(worktreePath); os.IsNotExist(err) {
		// Still prune: the bookkeeping may outlive the directory.
		_, _ = runGit(ctx, repoPath, "worktree", "prune") //nolint:errcheck // best-effort
		return nil
	}
	if _, err := runGit(ctx, repoPath, "worktree", "remove", "--force", worktreePath); err != nil {
		// A worktree with submodule or lock damage can refuse removal; fall
		// back to deleting the directory. Prune skips locked worktrees, so
		// the admin directory is cleared by id while the .git file can still
		// be read.
		id, idErr := WorktreeID(worktreePath)
		if rmErr := os.RemoveAll(worktreePath); rmErr != nil {
			return &domain.IoError{Operation: "remove", Path: worktreePath, Err: rmErr}
		}
		if idErr == nil && id != "" {
			adminDir := filepath.Join(repoPath, ".git", "worktrees", id)
			if rmErr := os.RemoveAll(adminDir); rmErr != nil {
				return &domain.IoError{Operation: "remove", Path: adminDir, Err: rmErr}
			}
		}
		_, _ = runGit(ctx, repoPath, "worktree", "prune") //nolint:errcheck // best-effort
	}
	return nil
}

// WorktreeID returns git's bookkeeping name for a linked worktree, the
// <name> in .git/worktrees/<name>. The main worktree, whose .git is a
// directory rather than a pointer file, yields the empty string. The id is
// stable across git worktree move, unlike the worktree path.
func WorktreeID(worktreePath string) (string, error) {
	gitPath := filepath.Join(worktreePath, ".git")
	info, err := os.Stat(gitPath)
	if err != nil {
		return "", &domain.IoError{Operation: "stat", Path: gitPath, Err: err}
	}
	if info.IsDir() {
		return "", nil
	}

	content, err := os.ReadFile(gitPath) //nolint:gosec // path rooted at the caller's worktree
	if err != nil {
		return "", &domain.IoError{Operation: "read", Path: gitPath, Err: err}
	}
	gitdir, ok := strings.CutPrefix(strings.TrimSpace(string(content)), "gitdir: ")
	if !ok {
		return "", domain.NewGitOperationError("parse worktree pointer",
			fmt.Errorf("%s is not a gitdir pointer", gitPath))
	}
	_, id, found := strings.Cut(gitdir, ".git/worktrees/")
	if !found {
		return "", domain.NewGitOperationError("parse worktree pointer",
			fmt.Errorf("gitdir %s is not under .git/worktrees", gitdir))
	}
	return strings.TrimSuffix(id, "/"), nil
}

// WorktreeExists reports whether the worktree directory is present on disk.
func WorktreeExists(worktreePath string) bool {
	info, err := os.Stat(worktreePath)
	return err == nil && info.IsDir()
}
