package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

const specColumns = `id, name, display_name, epic_id, repository_path,
	repository_name, content, created_at, updated_at`

// CreateSpec inserts a spec row. A (repository_path, name) collision is
// reported as domain.ErrSessionAlreadyExists since specs and the sessions
// they become share the name space from the user's perspective.
func (d *DB) CreateSpec(s *domain.Spec) error {
	_, err := d.db.Exec(`INSERT INTO specs (`+specColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		s.ID, s.Name, s.DisplayName, s.EpicID, s.RepositoryPath,
		s.RepositoryName, s.Content, s.CreatedAt.Unix(), s.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionAlreadyExists
		}
		return &domain.DatabaseError{Err: err}
	}
	return nil
}

// GetSpec loads a spec by id.
func (d *DB) GetSpec(id string) (*domain.Spec, error) {
	row := d.db.QueryRow(`SELECT `+specColumns+` FROM specs WHERE id = ?`, id)
	return scanSpec(row)
}

// GetSpecByName loads a spec by (repository_path, name).
func (d *DB) GetSpecByName(repoPath, name string) (*domain.Spec, error) {
	row := d.db.QueryRow(`SELECT `+specColumns+` FROM specs
		WHERE repository_path = ? AND name = ?`, repoPath, name)
	return scanSpec(row)
}

// ListSpecs returns all specs for a repository, newest first.
func (d *DB) ListSpecs(repoPath string) ([]*domain.Spec, error) {
	rows, err := d.db.Query(`SELECT `+specColumns+` FROM specs
		WHERE repository_path = ? ORDER BY created_at DESC, name`, repoPath)
	if err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var specs []*domain.Spec
	for rows.Next() {
		s, err := scanSpec(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	return specs, nil
}

// UpdateSpecContent replaces the free-text content.
func (d *DB) UpdateSpecContent(id, content string) error {
	res, err := d.db.Exec(`UPDATE specs SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now().Unix(), id)
	if err != nil {
		return &domain.DatabaseError{Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // sqlite supports RowsAffected
		return domain.ErrSpecNotFound
	}
	return nil
}

// DeleteSpec removes a spec row.
func (d *DB) DeleteSpec(id string) error {
	res, err := d.db.Exec(`DELETE FROM specs WHERE id = ?`, id)
	if err != nil {
		return &domain.DatabaseError{Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // sqlite supports RowsAffected
		return domain.ErrSpecNotFound
	}
	return nil
}

func scanSpec(row rowScanner) (*domain.Spec, error) {
	var s domain.Spec
	var created, updated int64
	err := row.Scan(&s.ID, &s.Name, &s.DisplayName, &s.EpicID,
		&s.RepositoryPath, &s.RepositoryName, &s.Content, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSpecNotFound
	}
	if err != nil {
		return nil, &domain.DatabaseError{Err: err}
	}
	s.CreatedAt = time.Unix(created, 0)
	s.UpdatedAt = time.Unix(updated, 0)
	return &s, nil
}
