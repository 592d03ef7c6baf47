package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/events"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/gitrepo"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/settings"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/terminal"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/testutil"
)

func newTestManager(t *testing.T, tr *testutil.TestRepo) *Manager {
	t.Helper()

	cfg, err := settings.Load(tr.Dir)
	require.NoError(t, err)

	mgr, err := NewManager(context.Background(), tr.Dir, cfg, Options{
		Backend: terminal.NewFakeBackend(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mgr.Shutdown(); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})
	return mgr
}

func TestCreateSession_MaterializesBranchAndWorktree(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)
	sub := mgr.Events()

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{
		Name:          "alpha",
		InitialPrompt: "Fix the login flow",
		AgentType:     "claude",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StateRunning, session.State)
	assert.Equal(t, "schaltwerk/alpha", session.Branch)
	assert.Equal(t, "main", session.ParentBranch)
	assert.Equal(t, "main", session.OriginalParentBranch)
	assert.True(t, gitrepo.WorktreeExists(session.WorktreePath))

	repo, err := gitrepo.Open(tr.Dir)
	require.NoError(t, err)
	assert.True(t, gitrepo.BranchExists(repo, "schaltwerk/alpha"))

	stored, err := mgr.Store().GetSessionByName(tr.Dir, "alpha")
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)
	assert.NotNil(t, stored.LastActivity, "creation stamps activity")

	// Stats and added events both fire during creation; order is not part of
	// the contract.
	var added bool
	for !added {
		select {
		case ev := <-sub:
			if ev.Kind == events.SessionAdded {
				assert.Equal(t, session.ID, ev.SessionID)
				added = true
			}
		default:
			t.Fatal("no session.added event published")
		}
	}
}

func TestCreateSession_AsSpecHasNoWorktree(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{
		Name:   "draft",
		AsSpec: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StateSpec, session.State)
	assert.Empty(t, session.WorktreePath)

	repo, err := gitrepo.Open(tr.Dir)
	require.NoError(t, err)
	assert.False(t, gitrepo.BranchExists(repo, "schaltwerk/draft"), "spec sessions create no branch")
}

func TestCreateSession_DuplicateNameRejected(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	_, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "alpha"})
	require.NoError(t, err)

	_, err = mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "alpha"})
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyExists)
}

func TestCreateSession_ConcurrentSameNameExactlyOneWins(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "contested"})
		}()
	}
	wg.Wait()

	var wins, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrSessionAlreadyExists):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, duplicates)
}

func TestCreateSession_InvalidNamesRejected(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	for _, name := range []string{"", "-leading-dash", "has space", "has/slash", ".hidden"} {
		_, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: name})
		var inputErr *domain.InvalidInputError
		assert.True(t, errors.As(err, &inputErr), "name %q must be rejected", name)
	}
}

func TestCreateSession_BootstrapsMissingParentBranch(t *testing.T) {
	t.Parallel()
	// Fresh repo whose default branch is not the configured base branch.
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{DefaultBranch: "master"})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "main", session.ParentBranch)

	repo, err := gitrepo.Open(tr.Dir)
	require.NoError(t, err)
	assert.True(t, gitrepo.BranchExists(repo, "main"), "base branch is bootstrapped at HEAD")
}

func TestTransitionState_PromotionMaterializesWorktree(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "draft", AsSpec: true})
	require.NoError(t, err)

	require.NoError(t, mgr.TransitionState(context.Background(), session.ID, domain.StateRunning))

	promoted, err := mgr.Store().GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRunning, promoted.State)
	assert.True(t, gitrepo.WorktreeExists(promoted.WorktreePath))
}

func TestTransitionState_RejectsInvalid(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "draft", AsSpec: true})
	require.NoError(t, err)

	err = mgr.TransitionState(context.Background(), session.ID, domain.StateReviewed)
	var stateErr *domain.InvalidStateError
	assert.True(t, errors.As(err, &stateErr), "spec cannot jump straight to reviewed")
}

func TestMarkReady(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	spec, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "draft", AsSpec: true})
	require.NoError(t, err)
	err = mgr.MarkReady(context.Background(), spec.ID)
	var stateErr *domain.InvalidStateError
	assert.True(t, errors.As(err, &stateErr), "spec sessions cannot be marked ready")

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "alpha"})
	require.NoError(t, err)
	require.NoError(t, mgr.MarkReady(context.Background(), session.ID))

	got, err := mgr.Store().GetSession(session.ID)
	require.NoError(t, err)
	assert.True(t, got.ReadyToMerge)

	require.NoError(t, mgr.UnmarkReady(context.Background(), session.ID))
	got, err = mgr.Store().GetSession(session.ID)
	require.NoError(t, err)
	assert.False(t, got.ReadyToMerge)
}

func TestCancelSession_RemovesWorktreeAndBranch(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{
		Name:          "alpha",
		InitialPrompt: "tidy up the config loader",
	})
	require.NoError(t, err)

	require.NoError(t, mgr.CancelSession(context.Background(), session.ID, false))

	assert.False(t, gitrepo.WorktreeExists(session.WorktreePath))
	repo, err := gitrepo.Open(tr.Dir)
	require.NoError(t, err)
	assert.False(t, gitrepo.BranchExists(repo, session.Branch))

	got, err := mgr.Store().GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, session.InitialPrompt, got.InitialPrompt, "the row survives for history")

	// Cancelling again is a no-op.
	require.NoError(t, mgr.CancelSession(context.Background(), session.ID, false))
}

func TestCancelSession_KeepBranch(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "alpha"})
	require.NoError(t, err)

	require.NoError(t, mgr.CancelSession(context.Background(), session.ID, true))

	repo, err := gitrepo.Open(tr.Dir)
	require.NoError(t, err)
	assert.True(t, gitrepo.BranchExists(repo, session.Branch), "work is preserved on the branch")
	assert.False(t, gitrepo.WorktreeExists(session.WorktreePath))
}

func TestApplyMerge_SquashesOntoParentAndRetires(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{
		Name:          "alpha",
		InitialPrompt: "Add the feature file",
	})
	require.NoError(t, err)

	// Commit work inside the session worktree.
	wt := &testutil.TestRepo{Dir: session.WorktreePath}
	wt.WriteFile(t, "feature.txt", "new feature\n")
	wt.Git(t, "add", "feature.txt")
	wt.Git(t, "commit", "-m", "add feature")

	outcome, err := mgr.ApplyMerge(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Add the feature file", outcome.CommitMessage)

	// The squash commit landed on main with the prompt's first line.
	log := tr.Git(t, "log", "--oneline", "main")
	assert.Contains(t, log, "Add the feature file")

	got, err := mgr.Store().GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMerged, got.Status)
	assert.False(t, gitrepo.WorktreeExists(session.WorktreePath))

	repo, err := gitrepo.Open(tr.Dir)
	require.NoError(t, err)
	assert.False(t, gitrepo.BranchExists(repo, session.Branch))
}

func TestApplyMerge_ConflictSurfacesAsData(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{
		Files: map[string]string{"shared.txt": "original\n"},
	})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "alpha"})
	require.NoError(t, err)

	wt := &testutil.TestRepo{Dir: session.WorktreePath}
	wt.WriteFile(t, "shared.txt", "session version\n")
	wt.Git(t, "add", "shared.txt")
	wt.Git(t, "commit", "-m", "session edit")

	tr.CommitOn(t, "main", "shared.txt", "parent version\n", "parent edit")

	_, err = mgr.ApplyMerge(context.Background(), session.ID)
	var conflictErr *domain.MergeConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Contains(t, conflictErr.Files, "shared.txt")

	got, err := mgr.Store().GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status, "a refused merge changes nothing")
	assert.True(t, gitrepo.WorktreeExists(session.WorktreePath))
}

func TestUpdateSessionFromParent_Rebases(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "alpha"})
	require.NoError(t, err)

	wt := &testutil.TestRepo{Dir: session.WorktreePath}
	wt.WriteFile(t, "session.txt", "session work\n")
	wt.Git(t, "add", "session.txt")
	wt.Git(t, "commit", "-m", "session work")

	tr.CommitOn(t, "main", "parent.txt", "parent work\n", "parent work")

	result, err := mgr.UpdateSessionFromParent(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, result.UpToDate)

	// After the rebase the parent's file is visible in the session worktree.
	assert.FileExists(t, session.WorktreePath+"/parent.txt")
}

func TestRenameSession(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "alpha"})
	require.NoError(t, err)
	_, err = mgr.CreateSession(context.Background(), CreateSessionOptions{Name: "beta"})
	require.NoError(t, err)

	err = mgr.RenameSession(context.Background(), session.ID, "beta", "Beta")
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyExists)

	require.NoError(t, mgr.RenameSession(context.Background(), session.ID, "gamma", "Gamma"))
	got, err := mgr.Store().GetSessionByName(tr.Dir, "gamma")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestStartSpecSession_PromotesAndDeletesSpec(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	spec, err := mgr.CreateSpec(context.Background(), "idea", "An Idea", "Build the widget\nwith details", "")
	require.NoError(t, err)

	session, err := mgr.StartSpecSession(context.Background(), spec.ID, "claude", false)
	require.NoError(t, err)

	assert.Equal(t, "idea", session.Name)
	assert.Equal(t, domain.StateRunning, session.State)
	assert.Equal(t, "Build the widget\nwith details", session.InitialPrompt)
	assert.True(t, gitrepo.WorktreeExists(session.WorktreePath))

	_, err = mgr.Store().GetSpec(spec.ID)
	assert.ErrorIs(t, err, domain.ErrSpecNotFound, "the promoted spec row is gone")
}

func TestEpicLifecycle(t *testing.T) {
	t.Parallel()
	tr := testutil.NewTestRepo(t, testutil.RepoOpts{})
	mgr := newTestManager(t, tr)

	epic, err := mgr.CreateEpic(context.Background(), "auth-rework", "blue")
	require.NoError(t, err)

	session, err := mgr.CreateSession(context.Background(), CreateSessionOptions{
		Name:   "alpha",
		EpicID: epic.ID,
	})
	require.NoError(t, err)

	require.NoError(t, mgr.DeleteEpic(context.Background(), epic.ID))

	got, err := mgr.Store().GetSession(session.ID)
	require.NoError(t, err)
	assert.Empty(t, got.EpicID, "epic deletion clears the grouping, not the session")
}
