package store

import (
	"database/sql"
	"errors"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// CreateEpic inserts an epic row.
func (d *DB) CreateEpic(repoPath string, e *domain.Epic) error {
	_, err := d.db.Exec(`INSERT INTO epics (id, name, color, repository_path) VALUES (?,?,?,?)`,
		e.ID, e.Name, e.Color, repoPath)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionAlreadyExists
		}
		return &domain.DatabaseError{Err: err}
	}
	return nil
}

// GetEpic loads an epic by id.
func (d *DB) GetEpic(id string) (*domain.Epic, error) {
	var e domain.Epic
	err := d.db.QueryRow(`SELECT id, name, color FROM epics WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEpicNotFound
	}
	if err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	return &e, nil
}

// ListEpics returns all epics for a repository sorted by name.
func (d *DB) ListEpics(repoPath string) ([]*domain.Epic, error) {
	rows, err := d.db.Query(`SELECT id, name, color FROM epics
		WHERE repository_path = ? ORDER BY name`, repoPath)
	if err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var epics []*domain.Epic
	for rows.Next() {
		var e domain.Epic
		if err := rows.Scan(&e.ID, &e.Name, &e.Color); err != nil {
			return nil, &domain.DatabaseError{Err: err}
		}
		epics = append(epics, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	return epics, nil
}

// DeleteEpic removes an epic and clears the reference on every session and
// spec that pointed at it. Members are kept; deletion never cascades.
func (d *DB) DeleteEpic(id string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return &domain.DatabaseError{Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.Exec(`DELETE FROM epics WHERE id = ?`, id)
	if err != nil {
		return &domain.DatabaseError{Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // sqlite supports RowsAffected
		return domain.ErrEpicNotFound
	}
	if _, err := tx.Exec(`UPDATE sessions SET epic_id = '' WHERE epic_id = ?`, id); err != nil {
		return &domain.DatabaseError{Err: err}
	}
	if _, err := tx.Exec(`UPDATE specs SET epic_id = '' WHERE epic_id = ?`, id); err != nil {
		return &domain.DatabaseError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &domain.DatabaseError{Err: err}
	}
	return nil
}
