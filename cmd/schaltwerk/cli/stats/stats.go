// Package stats computes and caches added/removed line counts for a
// session's worktree relative to its parent branch.
package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/gitrepo"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/logging"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/store"
)

// Cache serves git stats with a 60-second freshness window. A fresh cached
// row is returned verbatim; a stale or missing row triggers recompute and
// persist. When recompute fails, the stale row is returned rather than an
// error, so listings keep showing numbers.
type Cache struct {
	db *store.DB

	// now is replaceable for tests.
	now func() time.Time
}

// NewCache builds a cache over the given database.
func NewCache(db *store.DB) *Cache {
	return &Cache{db: db, now: time.Now}
}

// SetClock replaces the time source. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) { c.now = now }

// Get returns stats for the session, honoring the freshness window.
// Returns nil (no error) for sessions without a worktree on disk.
func (c *Cache) Get(ctx context.Context, session *domain.Session) (*domain.GitStats, error) {
	cached, err := c.db.GetGitStats(session.ID)
	if err != nil {
		return nil, err
	}
	if cached != nil && cached.Fresh(c.now()) {
		return cached, nil
	}

	fresh, err := c.Compute(ctx, session)
	if err != nil {
		if cached != nil {
			logging.Warn(ctx, "git stats recompute failed, serving stale value",
				slog.String("session_id", session.ID), slog.Any("error", err))
			return cached, nil
		}
		return nil, err
	}
	if fresh == nil {
		return nil, nil
	}
	if err := c.db.PutGitStats(fresh); err != nil {
		// Persisting is best-effort; the computed value is still good.
		logging.Warn(ctx, "failed to persist git stats",
			slog.String("session_id", session.ID), slog.Any("error", err))
	}
	return fresh, nil
}

// Compute calculates stats from the worktree without consulting the cache.
// Returns nil for spec sessions and sessions whose worktree is not on disk.
func (c *Cache) Compute(ctx context.Context, session *domain.Session) (*domain.GitStats, error) {
	if session.State == domain.StateSpec || !gitrepo.WorktreeExists(session.WorktreePath) {
		return nil, nil
	}

	base, err := c.diffBase(session)
	if err != nil {
		return nil, err
	}

	added, removed, err := gitrepo.DiffNumstat(ctx, session.WorktreePath, base)
	if err != nil {
		return nil, err
	}

	return &domain.GitStats{
		SessionID:    session.ID,
		LinesAdded:   added,
		LinesRemoved: removed,
		CalculatedAt: c.now(),
	}, nil
}

// diffBase picks the commit to diff against: the merge base of the session
// branch and its parent, so commits that landed on the parent after the
// session forked are not counted against the session.
func (c *Cache) diffBase(session *domain.Session) (string, error) {
	repo, err := gitrepo.Open(session.WorktreePath)
	if err != nil {
		return "", err
	}

	parentRef, err := repo.Reference(plumbing.NewBranchReferenceName(session.ParentBranch), true)
	if err != nil {
		// Parent branch gone (e.g. deleted remotely); diff against it by
		// name and let git report the real problem.
		return session.ParentBranch, nil //nolint:nilerr // fall back to the branch name
	}

	head, err := gitrepo.HeadCommit(repo)
	if err != nil {
		return "", err
	}

	base, err := gitrepo.MergeBase(repo, parentRef.Hash(), head)
	if err != nil {
		return session.ParentBranch, nil //nolint:nilerr // unrelated histories fall back to the branch tip
	}
	return base.String(), nil
}
