package gitrepo

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// MergeBase returns the best common ancestor of two commits.
func MergeBase(repo *git.Repository, a, b plumbing.Hash) (plumbing.Hash, error) {
	ca, err := repo.CommitObject(a)
	if err != nil {
		return plumbing.ZeroHash, domain.NewGitOperationError("resolve commit", err)
	}
	cb, err := repo.CommitObject(b)
	if err != nil {
		return plumbing.ZeroHash, domain.NewGitOperationError("resolve commit", err)
	}
	bases, err := ca.MergeBase(cb)
	if err != nil || len(bases) == 0 {
		return plumbing.ZeroHash, domain.NewGitOperationError("merge-base", err)
	}
	return bases[0].Hash, nil
}

// DiffNumstat returns total added and removed line counts of the worktree
// (committed and uncommitted work) relative to base. Shelled out because the
// numbers must include uncommitted changes, which go-git cannot diff at line
// granularity.
func DiffNumstat(ctx context.Context, worktreePath, base string) (added, removed int, err error) {
	out, err := runGit(ctx, worktreePath, "diff", "--numstat", base)
	if err != nil {
		return 0, 0, domain.NewGitOperationError("diff --numstat", err)
	}
	for line := range strings.Lines(out) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		// Binary files show "-"; skip them.
		a, errA := strconv.Atoi(fields[0])
		r, errR := strconv.Atoi(fields[1])
		if errA != nil || errR != nil {
			continue
		}
		added += a
		removed += r
	}
	return added, removed, nil
}
