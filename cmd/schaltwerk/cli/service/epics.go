package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// CreateEpic creates a named grouping for sessions and specs.
func (m *Manager) CreateEpic(_ context.Context, name, color string) (*domain.Epic, error) {
	if name == "" {
		return nil, &domain.InvalidInputError{Field: "name", Message: "must not be empty"}
	}
	epic := &domain.Epic{
		ID:    uuid.NewString(),
		Name:  name,
		Color: color,
	}
	if err := m.db.CreateEpic(m.repoPath, epic); err != nil {
		return nil, err
	}
	return epic, nil
}

// DeleteEpic removes an epic. Sessions and specs that referenced it are kept
// with the reference cleared.
func (m *Manager) DeleteEpic(_ context.Context, id string) error {
	return m.db.DeleteEpic(id)
}
