package service

import (
	"context"
	"log/slog"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/events"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/logging"
)

type finalizeOptions struct {
	ComputeStats  bool
	StampActivity bool
}

// finalizeCreation runs "persist row → compute stats → stamp activity" as
// one logical unit. Only persistence failure is fatal; the stats and
// activity steps are logged and absorbed so a creation never fails on a
// cosmetic follow-up.
func (m *Manager) finalizeCreation(ctx context.Context, session *domain.Session, opts finalizeOptions) error {
	logCtx := logging.WithComponent(logging.WithSession(ctx, session.ID), "finalizer")

	if err := m.db.CreateSession(session); err != nil {
		return err
	}

	if opts.ComputeStats {
		// Spec sessions and missing worktrees yield nil stats, not an error.
		if stats, err := m.statsCache.Compute(ctx, session); err != nil {
			logging.Warn(logCtx, "initial git stats computation failed", slog.Any("error", err))
		} else if stats != nil {
			if err := m.db.PutGitStats(stats); err != nil {
				logging.Warn(logCtx, "failed to persist initial git stats", slog.Any("error", err))
			} else {
				m.bus.Publish(events.Event{Kind: events.GitStatsUpdated, SessionID: session.ID, Stats: stats})
			}
		}
	}

	if opts.StampActivity {
		now := m.now()
		if err := m.db.TouchSessionActivity(session.ID, now); err != nil {
			logging.Warn(logCtx, "failed to stamp last activity", slog.Any("error", err))
		} else {
			session.LastActivity = &now
		}
	}

	m.bus.Publish(events.Event{Kind: events.SessionAdded, SessionID: session.ID, State: session.State})
	return nil
}

// finalizeStateTransition updates the persisted session_state and
// opportunistically stamps activity. The activity stamp is best-effort.
func (m *Manager) finalizeStateTransition(ctx context.Context, sessionID string, newState domain.SessionState) error {
	logCtx := logging.WithComponent(logging.WithSession(ctx, sessionID), "finalizer")

	if err := m.db.UpdateSessionState(sessionID, newState); err != nil {
		return err
	}
	if err := m.db.TouchSessionActivity(sessionID, m.now()); err != nil {
		logging.Warn(logCtx, "failed to stamp activity on state transition", slog.Any("error", err))
	}

	m.bus.Publish(events.Event{Kind: events.StateTransitioned, SessionID: sessionID, State: newState})
	return nil
}
