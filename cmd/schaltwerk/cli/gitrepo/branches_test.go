package gitrepo

import (
	"context"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/testutil"
)

func TestBranchExists(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})

	assert.True(t, BranchExists(tr.Repo, "main"))
	assert.False(t, BranchExists(tr.Repo, "nope"))
}

func TestListBranches_MergesLocalAndSorts(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	tr.CreateBranch(t, "zeta")
	tr.CreateBranch(t, "alpha")

	branches, err := ListBranches(tr.Repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "main", "zeta"}, branches)
}

func TestCreateAndDeleteBranch(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})

	head, err := tr.Repo.Head()
	require.NoError(t, err)

	require.NoError(t, CreateBranchAt(tr.Repo, "feature", head.Hash()))
	assert.True(t, BranchExists(tr.Repo, "feature"))

	require.NoError(t, DeleteBranch(tr.Repo, "feature"))
	assert.False(t, BranchExists(tr.Repo, "feature"))

	// Deleting again is not an error.
	require.NoError(t, DeleteBranch(tr.Repo, "feature"))
}

func TestRenameBranch_RefusesExistingTarget(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	tr.CreateBranch(t, "taken")

	err := RenameBranch(context.Background(), tr.Dir, tr.Repo, "main", "taken")
	require.Error(t, err)
	assert.True(t, BranchExists(tr.Repo, "main"), "source must survive a refused rename")
}

func TestEnsureBranchAtHead_ChecksOutExisting(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	tr.CreateBranch(t, "develop")

	require.NoError(t, EnsureBranchAtHead(context.Background(), tr.Dir, "develop"))

	repo, err := Open(tr.Dir)
	require.NoError(t, err)
	current, err := CurrentBranch(repo)
	require.NoError(t, err)
	assert.Equal(t, "develop", current)
}

func TestEnsureBranchAtHead_RenamesCurrentBranch(t *testing.T) {
	t.Parallel()
	// Freshly initialized repo whose default branch is not the configured
	// base branch: the current branch is renamed, not forked.
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{DefaultBranch: "master"})

	require.NoError(t, EnsureBranchAtHead(context.Background(), tr.Dir, "main"))

	repo, err := Open(tr.Dir)
	require.NoError(t, err)
	current, err := CurrentBranch(repo)
	require.NoError(t, err)
	assert.Equal(t, "main", current)
	assert.False(t, BranchExists(repo, "master"), "old name must be gone after rename")
}

func TestEnsureBranchAtHead_CreatesFromDetachedHead(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	head, err := tr.Repo.Head()
	require.NoError(t, err)
	tr.Git(t, "checkout", "--detach", head.Hash().String())

	require.NoError(t, EnsureBranchAtHead(context.Background(), tr.Dir, "rescued"))

	repo, err := Open(tr.Dir)
	require.NoError(t, err)
	current, err := CurrentBranch(repo)
	require.NoError(t, err)
	assert.Equal(t, "rescued", current)

	got, err := repo.Reference(BranchRef("rescued"), true)
	require.NoError(t, err)
	assert.Equal(t, head.Hash(), got.Hash(), "new branch must point at the pre-call HEAD")
}

func TestEnsureBranchAtHead_Idempotent(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{DefaultBranch: "master"})

	require.NoError(t, EnsureBranchAtHead(context.Background(), tr.Dir, "main"))
	require.NoError(t, EnsureBranchAtHead(context.Background(), tr.Dir, "main"))

	repo, err := Open(tr.Dir)
	require.NoError(t, err)
	current, err := CurrentBranch(repo)
	require.NoError(t, err)
	assert.Equal(t, "main", current)
}

func TestEnsureBranchAtHead_EmptyRepository(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, BranchRef("main"))))

	err = EnsureBranchAtHead(context.Background(), dir, "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no commits")
}

func TestCurrentBranch_DetachedReportsHEAD(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	head, err := tr.Repo.Head()
	require.NoError(t, err)
	tr.Git(t, "checkout", "--detach", head.Hash().String())

	repo, err := Open(tr.Dir)
	require.NoError(t, err)
	current, err := CurrentBranch(repo)
	require.NoError(t, err)
	assert.Equal(t, "HEAD", current)
}
