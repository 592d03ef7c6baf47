package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// GetGitStats returns the cached stats row for a session, or nil when absent.
func (d *DB) GetGitStats(sessionID string) (*domain.GitStats, error) {
	var g domain.GitStats
	var calculated int64
	err := d.db.QueryRow(`SELECT session_id, lines_added, lines_removed, calculated_at
		FROM git_stats WHERE session_id = ?`, sessionID).
		Scan(&g.SessionID, &g.LinesAdded, &g.LinesRemoved, &calculated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	g.CalculatedAt = time.Unix(calculated, 0)
	return &g, nil
}

// PutGitStats upserts the stats row for a session.
func (d *DB) PutGitStats(g *domain.GitStats) error {
	_, err := d.db.Exec(`INSERT INTO git_stats (session_id, lines_added, lines_removed, calculated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(session_id) DO UPDATE SET
			lines_added = excluded.lines_added,
			lines_removed = excluded.lines_removed,
			calculated_at = excluded.calculated_at`,
		g.SessionID, g.LinesAdded, g.LinesRemoved, g.CalculatedAt.Unix())
	if err != nil {
		return &domain.DatabaseError{Err: err}
	}
	return nil
}
