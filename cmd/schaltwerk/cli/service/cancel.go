package service

import (
	"context"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/events"
)

// CancelSession abandons a session: the worktree is removed, the branch
// deleted unless keepBranch is set, and the row marked cancelled. The row is
// kept so the prompt and history remain inspectable.
func (m *Manager) CancelSession(ctx context.Context, sessionID string, keepBranch bool) error {
	session, err := m.db.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.Status == domain.StatusCancelled {
		return nil
	}

	m.retireWorktree(ctx, session, !keepBranch)

	if err := m.db.UpdateSessionStatus(sessionID, domain.StatusCancelled); err != nil {
		return err
	}
	m.bus.Publish(events.Event{Kind: events.SessionRemoved, SessionID: sessionID})
	m.telemetry.Capture("session_cancelled", nil)
	return nil
}

// RenameSession changes the session's name and display name. The new name
// goes through the same reservation registry as creation, so a concurrent
// create of the same name cannot race it.
func (m *Manager) RenameSession(ctx context.Context, sessionID, newName, displayName string) error {
	if newName == "" || !validSessionName.MatchString(newName) {
		return &domain.InvalidInputError{Field: "name", Message: "must be alphanumeric with ._- separators"}
	}

	if !m.reservations.Reserve(m.repoPath, newName) {
		return domain.ErrSessionAlreadyExists
	}
	defer m.reservations.Release(m.repoPath, newName)

	if _, err := m.db.GetSessionByName(m.repoPath, newName); err == nil {
		return domain.ErrSessionAlreadyExists
	}
	return m.db.RenameSession(sessionID, newName, displayName)
}
