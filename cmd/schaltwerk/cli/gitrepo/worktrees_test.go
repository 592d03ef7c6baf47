package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/testutil"
)

func TestAddWorktree(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	tr.CreateBranch(t, "session-branch")
	wtPath := filepath.Join(tr.Dir, ".schaltwerk", "worktrees", "alpha")

	require.NoError(t, AddWorktree(context.Background(), tr.Dir, wtPath, "session-branch"))
	assert.True(t, WorktreeExists(wtPath))

	// The worktree is checked out on the session branch.
	readme := filepath.Join(wtPath, "README.md")
	_, err := os.Stat(readme)
	assert.NoError(t, err)
}

func TestAddWorktree_RefusesOccupiedPath(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	tr.CreateBranch(t, "session-branch")
	wtPath := filepath.Join(tr.Dir, ".schaltwerk", "worktrees", "alpha")

	require.NoError(t, AddWorktree(context.Background(), tr.Dir, wtPath, "session-branch"))

	err := AddWorktree(context.Background(), tr.Dir, wtPath, "session-branch")
	assert.ErrorIs(t, err, domain.ErrWorktreeExists)
}

func TestRemoveWorktree_Idempotent(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	tr.CreateBranch(t, "session-branch")
	wtPath := filepath.Join(tr.Dir, ".schaltwerk", "worktrees", "alpha")

	require.NoError(t, AddWorktree(context.Background(), tr.Dir, wtPath, "session-branch"))
	require.NoError(t, RemoveWorktree(context.Background(), tr.Dir, wtPath))
	assert.False(t, WorktreeExists(wtPath))

	// Removing an already removed worktree is not an error.
	require.NoError(t, RemoveWorktree(context.Background(), tr.Dir, wtPath))
}

func TestRemoveWorktree_LockedClearsBookkeeping(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	tr.CreateBranch(t, "session-branch")
	wtPath := filepath.Join(tr.Dir, ".schaltwerk", "worktrees", "alpha")

	require.NoError(t, AddWorktree(context.Background(), tr.Dir, wtPath, "session-branch"))
	// A locked worktree refuses a single --force and is skipped by prune.
	tr.Git(t, "worktree", "lock", wtPath)

	require.NoError(t, RemoveWorktree(context.Background(), tr.Dir, wtPath))
	assert.False(t, WorktreeExists(wtPath))
	assert.NoDirExists(t, filepath.Join(tr.Dir, ".git", "worktrees", "alpha"),
		"admin directory must not survive removal")
}

func TestWorktreeID(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	tr.CreateBranch(t, "session-branch")
	wtPath := filepath.Join(tr.Dir, ".schaltwerk", "worktrees", "alpha")

	require.NoError(t, AddWorktree(context.Background(), tr.Dir, wtPath, "session-branch"))

	id, err := WorktreeID(wtPath)
	require.NoError(t, err)
	assert.Equal(t, "alpha", id)

	// The main worktree has no linked-worktree id.
	id, err = WorktreeID(tr.Dir)
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = WorktreeID(filepath.Join(tr.Dir, "does-not-exist"))
	assert.Error(t, err)
}
