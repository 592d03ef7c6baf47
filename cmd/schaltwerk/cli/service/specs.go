package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/paths"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/redact"
)

// CreateSpec stores a draft task description. Specs share the session name
// space, so the same reservation and uniqueness rules apply.
func (m *Manager) CreateSpec(ctx context.Context, name, displayName, content, epicID string) (*domain.Spec, error) {
	if name == "" || !validSessionName.MatchString(name) {
		return nil, &domain.InvalidInputError{Field: "name", Message: "must be alphanumeric with ._- separators"}
	}

	if !m.reservations.Reserve(m.repoPath, name) {
		return nil, domain.ErrSessionAlreadyExists
	}
	defer m.reservations.Release(m.repoPath, name)

	if findings := redact.Scan(ctx, content); len(findings) > 0 {
		redact.WarnFindings(ctx, findings)
	}

	now := m.now()
	spec := &domain.Spec{
		ID:             uuid.NewString(),
		Name:           name,
		DisplayName:    displayName,
		EpicID:         epicID,
		RepositoryPath: m.repoPath,
		RepositoryName: paths.RepositoryName(m.repoPath),
		Content:        content,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.db.CreateSpec(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// StartSpecSession promotes a spec into a running session: the spec's
// content becomes the initial prompt, the worktree is materialized, and the
// spec row is deleted once the session exists.
func (m *Manager) StartSpecSession(ctx context.Context, specID, agentType string, skipPermissions bool) (*domain.Session, error) {
	spec, err := m.db.GetSpec(specID)
	if err != nil {
		return nil, err
	}

	session, err := m.CreateSession(ctx, CreateSessionOptions{
		Name:            spec.Name,
		DisplayName:     spec.DisplayName,
		InitialPrompt:   spec.Content,
		EpicID:          spec.EpicID,
		AgentType:       agentType,
		SkipPermissions: skipPermissions,
	})
	if err != nil {
		return nil, err
	}

	// The session row now carries everything the spec did.
	if err := m.db.DeleteSpec(specID); err != nil {
		return session, err
	}
	return session, nil
}

// UpdateSpecContent replaces a spec's free-text content, warning about any
// secrets in the new text.
func (m *Manager) UpdateSpecContent(ctx context.Context, specID, content string) error {
	if findings := redact.Scan(ctx, content); len(findings) > 0 {
		redact.WarnFindings(ctx, findings)
	}
	return m.db.UpdateSpecContent(specID, content)
}

// DeleteSpec removes a draft directly.
func (m *Manager) DeleteSpec(_ context.Context, specID string) error {
	return m.db.DeleteSpec(specID)
}
