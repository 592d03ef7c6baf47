package gitrepo

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// BranchRef returns the full reference name for a local branch.
func BranchRef(name string) plumbing.ReferenceName {
	return plumbing.NewBranchReferenceName(name)
}

// BranchExists reports whether a local branch exists. Corrupt or otherwise
// unreadable refs count as "does not exist" rather than erroring: a ref we
// cannot resolve is a ref we cannot use.
func BranchExists(repo *git.Repository, name string) bool {
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		return false
	}
	return ref != nil && !ref.Hash().IsZero()
}

// ListBranches returns local and remote-tracking branch names, remote prefix
// stripped, deduplicated and sorted.
func ListBranches(repo *git.Repository) ([]string, error) {
	refs, err := repo.References()
	if err != nil {
		return nil, domain.NewGitOperationError("list references", err)
	}

	seen := make(map[string]struct{})
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsBranch():
			seen[name.Short()] = struct{}{}
		case name.IsRemote():
			// refs/remotes/<remote>/<branch> -> <branch>
			short := name.Short()
			if _, branch, found := strings.Cut(short, "/"); found {
				if branch != "HEAD" {
					seen[branch] = struct{}{}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewGitOperationError("iterate references", err)
	}

	branches := make([]string, 0, len(seen))
	for b := range seen {
		branches = append(branches, b)
	}
	sort.Strings(branches)
	return branches, nil
}

// CreateBranchAt creates a branch pointing at the given commit without
// checking it out.
func CreateBranchAt(repo *git.Repository, name string, hash plumbing.Hash) error {
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	if err := repo.Storer.SetReference(ref); err != nil {
		return domain.NewGitOperationError("create branch "+name, err)
	}
	return nil
}

// DeleteBranch force-deletes a local branch. Deleting a branch that does not
// exist is not an error.
func DeleteBranch(repo *git.Repository, name string) error {
	refName := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(refName, false); err != nil {
		return nil
	}
	if err := repo.Storer.RemoveReference(refName); err != nil {
		return domain.NewGitOperationError("delete branch "+name, err)
	}
	return nil
}

// RenameBranch renames a local branch. Fails when the target name already
// exists; there is no silent overwrite.
func RenameBranch(ctx context.Context, repoPath string, repo *git.Repository, from, to string) error {
	if BranchExists(repo, to) {
		return domain.NewGitOperationError("rename branch",
			&domain.InvalidInputError{Field: "branch", Message: "target branch " + to + " already exists"})
	}
	// git branch -m also rewrites HEAD and worktree bookkeeping, which a raw
	// ref rename would miss.
	if _, err := runGit(ctx, repoPath, "branch", "-m", from, to); err != nil {
		return domain.NewGitOperationError("rename branch", err)
	}
	return nil
}

// EnsureBranchAtHead leaves the repository checked out onto branchName,
// pointing at the pre-call HEAD commit, regardless of starting state:
//
//	(a) the branch already exists: check it out;
//	(b) a different branch is checked out (not detached): rename it in place
//	    and check it out. This bootstraps a freshly initialized repo whose
//	    default branch name differs from the configured base branch;
//	(c) otherwise create the branch fresh from HEAD and check it out.
//
// Checkout is always forced; this only runs on freshly prepared state.
// It is idempotent: a second call with the same arguments is case (a).
func EnsureBranchAtHead(ctx context.Context, repoPath, branchName string) error {
	repo, err := Open(repoPath)
	if err != nil {
		return err
	}

	if BranchExists(repo, branchName) {
		return checkout(ctx, repoPath, branchName)
	}

	current, err := CurrentBranch(repo)
	if err != nil {
		return err
	}
	if current != "HEAD" && current != branchName {
		if err := RenameBranch(ctx, repoPath, repo, current, branchName); err != nil {
			return err
		}
		return checkout(ctx, repoPath, branchName)
	}

	// A repository with no commits has nothing to branch from; name the
	// condition instead of surfacing a raw unresolvable-HEAD error.
	if IsEmpty(repo) {
		return domain.NewGitOperationError("ensure branch "+branchName,
			errors.New("repository has no commits"))
	}
	head, err := HeadCommit(repo)
	if err != nil {
		return err
	}
	if err := CreateBranchAt(repo, branchName, head); err != nil {
		return err
	}
	return checkout(ctx, repoPath, branchName)
}

// checkout force-switches the working tree to branch. Shelled to the host
// git binary; go-git's checkout mishandles some index states.
func checkout(ctx context.Context, repoPath, branch string) error {
	if _, err := runGit(ctx, repoPath, "checkout", "-f", branch); err != nil {
		return domain.NewGitOperationError("checkout "+branch, err)
	}
	return nil
}
