package service

import (
	"context"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/paths"
)

// TransitionState moves a session to a new state after validating the
// transition. Promoting a spec-state session to running materializes its
// worktree first; the state only changes once the worktree exists, keeping
// the worktree/state invariant intact.
func (m *Manager) TransitionState(ctx context.Context, sessionID string, newState domain.SessionState) error {
	session, err := m.db.GetSession(sessionID)
	if err != nil {
		return err
	}

	if err := domain.ValidateTransition(session.State, newState); err != nil {
		return err
	}
	if session.State == newState {
		return nil
	}

	if session.State == domain.StateSpec && newState == domain.StateRunning {
		worktreePath := paths.WorktreePath(m.repoPath, session.Name)
		if err := m.materializeWorktree(ctx, session, worktreePath); err != nil {
			return err
		}
		if err := m.db.UpdateSessionWorktree(sessionID, worktreePath); err != nil {
			return err
		}
	}

	return m.finalizeStateTransition(ctx, sessionID, newState)
}

// MarkReady flags a session's work as ready to merge. Only running or
// reviewed sessions can be flagged.
func (m *Manager) MarkReady(ctx context.Context, sessionID string) error {
	session, err := m.db.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.State == domain.StateSpec {
		return &domain.InvalidStateError{Current: session.State, Expected: domain.StateRunning}
	}
	if err := m.db.SetReadyToMerge(sessionID, true); err != nil {
		return err
	}
	return m.db.TouchSessionActivity(sessionID, m.now())
}

// UnmarkReady clears the ready flag.
func (m *Manager) UnmarkReady(ctx context.Context, sessionID string) error {
	if _, err := m.db.GetSession(sessionID); err != nil {
		return err
	}
	return m.db.SetReadyToMerge(sessionID, false)
}
