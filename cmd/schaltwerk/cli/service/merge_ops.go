package service

import (
	"context"
	"log/slog"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/events"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/gitrepo"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/logging"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/merge"
)

// MergeOutcome reports a completed squash merge.
type MergeOutcome struct {
	SessionID     string
	SessionBranch string
	ParentBranch  string
	CommitMessage string
}

// ComputeMergePreview computes merge feasibility and the command plan for a
// session without mutating the repository.
func (m *Manager) ComputeMergePreview(ctx context.Context, sessionID string) (*merge.Preview, error) {
	session, err := m.db.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == domain.StateSpec {
		return nil, &domain.InvalidStateError{Current: session.State, Expected: domain.StateRunning}
	}
	return m.mergeEngine.ComputePreview(session)
}

// ApplyMerge executes the squash-merge plan for a session and retires the
// session on success: status becomes merged, the worktree is removed, the
// session branch deleted. Conflicts surface as data before anything runs.
func (m *Manager) ApplyMerge(ctx context.Context, sessionID string) (*MergeOutcome, error) {
	logCtx := logging.WithComponent(logging.WithSession(ctx, sessionID), "merge")

	session, err := m.db.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == domain.StateSpec {
		return nil, &domain.InvalidStateError{Current: session.State, Expected: domain.StateReviewed}
	}

	preview, err := m.mergeEngine.ComputePreview(session)
	if err != nil {
		return nil, err
	}
	if err := m.mergeEngine.Apply(ctx, preview); err != nil {
		return nil, err
	}

	// The merge landed; everything after this is cleanup and must not fail
	// the operation.
	if err := m.db.UpdateSessionStatus(sessionID, domain.StatusMerged); err != nil {
		logging.Warn(logCtx, "failed to mark session merged", slog.Any("error", err))
	}
	m.retireWorktree(ctx, session, true)
	m.bus.Publish(events.Event{Kind: events.SessionRemoved, SessionID: sessionID})
	m.telemetry.Capture("session_merged", nil)

	return &MergeOutcome{
		SessionID:     sessionID,
		SessionBranch: session.Branch,
		ParentBranch:  session.ParentBranch,
		CommitMessage: preview.DefaultCommitMessage,
	}, nil
}

// UpdateSessionFromParent reapplies the session's commits on top of the
// current parent branch.
func (m *Manager) UpdateSessionFromParent(ctx context.Context, sessionID string) (*merge.UpdateFromParentResult, error) {
	session, err := m.db.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == domain.StateSpec {
		return nil, &domain.InvalidStateError{Current: session.State, Expected: domain.StateRunning}
	}

	result, err := m.mergeEngine.UpdateFromParent(ctx, session)
	if err != nil {
		return nil, err
	}

	if touchErr := m.db.TouchSessionActivity(sessionID, m.now()); touchErr != nil {
		logging.Warn(logging.WithComponent(ctx, "merge"), "failed to stamp activity after update",
			slog.String("session_id", sessionID), slog.Any("error", touchErr))
	}
	return result, nil
}

// retireWorktree removes the session worktree and, when deleteBranch is set,
// its branch. All failures are logged; retirement is best-effort cleanup.
func (m *Manager) retireWorktree(ctx context.Context, session *domain.Session, deleteBranch bool) {
	logCtx := logging.WithComponent(logging.WithSession(ctx, session.ID), "retire")

	if session.WorktreePath != "" {
		if err := gitrepo.RemoveWorktree(ctx, m.repoPath, session.WorktreePath); err != nil {
			logging.Warn(logCtx, "failed to remove worktree",
				slog.String("worktree", session.WorktreePath), slog.Any("error", err))
		}
	}
	if deleteBranch {
		repo, err := gitrepo.Open(m.repoPath)
		if err != nil {
			logging.Warn(logCtx, "failed to open repository for branch cleanup", slog.Any("error", err))
			return
		}
		if err := gitrepo.DeleteBranch(repo, session.Branch); err != nil {
			logging.Warn(logCtx, "failed to delete session branch",
				slog.String("branch", session.Branch), slog.Any("error", err))
		}
	}
}
