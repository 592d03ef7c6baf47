package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

const sessionColumns = `id, name, display_name, version_group_id, version_number,
	repository_path, repository_name, branch, parent_branch, original_parent_branch,
	worktree_path, status, session_state, created_at, updated_at, last_activity,
	initial_prompt, epic_id, ready_to_merge, resume_allowed,
	pending_name_generation, was_auto_generated,
	original_agent_type, original_skip_permissions`

// CreateSession inserts a session row. A (repository_path, name) collision is
// reported as domain.ErrSessionAlreadyExists.
func (d *DB) CreateSession(s *domain.Session) error {
	_, err := d.db.Exec(`INSERT INTO sessions (`+sessionColumns+`) VALUES
		(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.Name, s.DisplayName, s.VersionGroupID, s.VersionNumber,
		s.RepositoryPath, s.RepositoryName, s.Branch, s.ParentBranch, s.OriginalParentBranch,
		s.WorktreePath, string(s.Status), string(s.State),
		s.CreatedAt.Unix(), s.UpdatedAt.Unix(), nullableUnix(s.LastActivity),
		s.InitialPrompt, s.EpicID,
		s.ReadyToMerge, s.ResumeAllowed, s.PendingNameGeneration, s.WasAutoGenerated,
		s.OriginalAgentType, s.OriginalSkipPermissions,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionAlreadyExists
		}
		return &domain.DatabaseError{Err: err}
	}
	return nil
}

// GetSession loads a session by id.
func (d *DB) GetSession(id string) (*domain.Session, error) {
	row := d.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// GetSessionByName loads a session by (repository_path, name).
func (d *DB) GetSessionByName(repoPath, name string) (*domain.Session, error) {
	row := d.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions
		WHERE repository_path = ? AND name = ?`, repoPath, name)
	return scanSession(row)
}

// ListSessions returns all sessions for a repository, newest first.
func (d *DB) ListSessions(repoPath string) ([]*domain.Session, error) {
	rows, err := d.db.Query(`SELECT `+sessionColumns+` FROM sessions
		WHERE repository_path = ? ORDER BY created_at DESC, name`, repoPath)
	if err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	return sessions, nil
}

// ListVersions returns all sessions in a version group ordered by version number.
func (d *DB) ListVersions(groupID string) ([]*domain.Session, error) {
	rows, err := d.db.Query(`SELECT `+sessionColumns+` FROM sessions
		WHERE version_group_id = ? ORDER BY version_number`, groupID)
	if err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	return sessions, nil
}

// UpdateSessionState updates session_state and updated_at.
func (d *DB) UpdateSessionState(id string, state domain.SessionState) error {
	return d.execOne(`UPDATE sessions SET session_state = ?, updated_at = ? WHERE id = ?`,
		string(state), time.Now().Unix(), id)
}

// UpdateSessionStatus updates the coarse lifecycle status.
func (d *DB) UpdateSessionStatus(id string, status domain.SessionStatus) error {
	return d.execOne(`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().Unix(), id)
}

// UpdateSessionWorktree records the materialized worktree path.
func (d *DB) UpdateSessionWorktree(id, worktreePath string) error {
	return d.execOne(`UPDATE sessions SET worktree_path = ?, updated_at = ? WHERE id = ?`,
		worktreePath, time.Now().Unix(), id)
}

// UpdateSessionParentBranch retargets the parent branch. The original parent
// branch column is immutable and deliberately not touched here.
func (d *DB) UpdateSessionParentBranch(id, parentBranch string) error {
	return d.execOne(`UPDATE sessions SET parent_branch = ?, updated_at = ? WHERE id = ?`,
		parentBranch, time.Now().Unix(), id)
}

// SetReadyToMerge flips the ready_to_merge flag.
func (d *DB) SetReadyToMerge(id string, ready bool) error {
	return d.execOne(`UPDATE sessions SET ready_to_merge = ?, updated_at = ? WHERE id = ?`,
		ready, time.Now().Unix(), id)
}

// RenameSession changes the session name and display name. A name collision
// within the repository is reported as domain.ErrSessionAlreadyExists.
func (d *DB) RenameSession(id, name, displayName string) error {
	err := d.execOne(`UPDATE sessions SET name = ?, display_name = ?, updated_at = ? WHERE id = ?`,
		name, displayName, time.Now().Unix(), id)
	var dbErr *domain.DatabaseError
	if errors.As(err, &dbErr) && isUniqueViolation(dbErr.Err) {
		return domain.ErrSessionAlreadyExists
	}
	return err
}

// TouchSessionActivity stamps last_activity with now.
func (d *DB) TouchSessionActivity(id string, now time.Time) error {
	return d.execOne(`UPDATE sessions SET last_activity = ?, updated_at = ? WHERE id = ?`,
		now.Unix(), now.Unix(), id)
}

// DeleteSession removes the session row and its cached stats.
func (d *DB) DeleteSession(id string) error {
	if _, err := d.db.Exec(`DELETE FROM git_stats WHERE session_id = ?`, id); err != nil {
		return &domain.DatabaseError{Err: err}
	}
	return d.execOne(`DELETE FROM sessions WHERE id = ?`, id)
}

func (d *DB) execOne(query string, args ...any) error {
	res, err := d.db.Exec(query, args...)
	if err != nil {
		return &domain.DatabaseError{Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &domain.DatabaseError{Err: err}
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var status, state string
	var created, updated int64
	var lastActivity sql.NullInt64
	err := row.Scan(
		&s.ID, &s.Name, &s.DisplayName, &s.VersionGroupID, &s.VersionNumber,
		&s.RepositoryPath, &s.RepositoryName, &s.Branch, &s.ParentBranch, &s.OriginalParentBranch,
		&s.WorktreePath, &status, &state, &created, &updated, &lastActivity,
		&s.InitialPrompt, &s.EpicID,
		&s.ReadyToMerge, &s.ResumeAllowed, &s.PendingNameGeneration, &s.WasAutoGenerated,
		&s.OriginalAgentType, &s.OriginalSkipPermissions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	s.Status = domain.SessionStatus(status)
	s.State = domain.SessionStateFromString(state)
	s.CreatedAt = time.Unix(created, 0)
	s.UpdatedAt = time.Unix(updated, 0)
	if lastActivity.Valid {
		t := time.Unix(lastActivity.Int64, 0)
		s.LastActivity = &t
	}
	return &s, nil
}

func nullableUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

// isUniqueViolation matches the sqlite unique-constraint error without
// importing driver error codes everywhere.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
