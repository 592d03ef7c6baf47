package service

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/gitrepo"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/logging"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/paths"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/redact"
)

var validSessionName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// CreateSessionOptions configures CreateSession.
type CreateSessionOptions struct {
	Name          string
	DisplayName   string
	ParentBranch  string
	InitialPrompt string
	EpicID        string

	// AsSpec creates the session row without materializing a worktree;
	// the session starts in StateSpec.
	AsSpec bool

	AgentType       string
	SkipPermissions bool

	VersionGroupID string
	VersionNumber  int
}

// CreateSession creates an isolated session: reserve the name, materialize
// branch and worktree (unless AsSpec), persist the row, prime stats, stamp
// activity. The reservation is released on every path out of this function;
// after a successful return the database row is the source of truth.
func (m *Manager) CreateSession(ctx context.Context, opts CreateSessionOptions) (*domain.Session, error) {
	logCtx := logging.WithComponent(ctx, "create")

	if opts.Name == "" || !validSessionName.MatchString(opts.Name) {
		return nil, &domain.InvalidInputError{Field: "name", Message: "must be alphanumeric with ._- separators"}
	}
	parentBranch := opts.ParentBranch
	if parentBranch == "" {
		parentBranch = m.settings.BaseBranch
	}

	if !m.reservations.Reserve(m.repoPath, opts.Name) {
		return nil, domain.ErrSessionAlreadyExists
	}
	defer m.reservations.Release(m.repoPath, opts.Name)

	// The reservation only guards in-flight creations; a finished session
	// with the name is caught here before any git work.
	if _, err := m.db.GetSessionByName(m.repoPath, opts.Name); err == nil {
		return nil, domain.ErrSessionAlreadyExists
	}

	if findings := redact.Scan(ctx, opts.InitialPrompt); len(findings) > 0 {
		redact.WarnFindings(ctx, findings)
	}

	now := m.now()
	session := &domain.Session{
		ID:                      uuid.NewString(),
		Name:                    opts.Name,
		DisplayName:             opts.DisplayName,
		VersionGroupID:          opts.VersionGroupID,
		VersionNumber:           opts.VersionNumber,
		RepositoryPath:          m.repoPath,
		RepositoryName:          paths.RepositoryName(m.repoPath),
		Branch:                  m.settings.SessionBranch(opts.Name),
		ParentBranch:            parentBranch,
		OriginalParentBranch:    parentBranch,
		Status:                  domain.StatusActive,
		State:                   domain.StateSpec,
		CreatedAt:               now,
		UpdatedAt:               now,
		InitialPrompt:           opts.InitialPrompt,
		EpicID:                  opts.EpicID,
		ResumeAllowed:           true,
		OriginalAgentType:       opts.AgentType,
		OriginalSkipPermissions: opts.SkipPermissions,
	}

	if !opts.AsSpec {
		worktreePath := paths.WorktreePath(m.repoPath, opts.Name)
		if err := m.materializeWorktree(ctx, session, worktreePath); err != nil {
			return nil, err
		}
		session.State = domain.StateRunning
		session.WorktreePath = worktreePath
	}

	if err := m.finalizeCreation(ctx, session, finalizeOptions{
		ComputeStats:  !opts.AsSpec,
		StampActivity: true,
	}); err != nil {
		// Persistence failed: tear the worktree back down so a retry of the
		// released name starts clean.
		if session.WorktreePath != "" {
			if cleanupErr := gitrepo.RemoveWorktree(ctx, m.repoPath, session.WorktreePath); cleanupErr != nil {
				logging.Warn(logCtx, "failed to clean up worktree after aborted creation",
					slog.String("worktree", session.WorktreePath), slog.Any("error", cleanupErr))
			}
		}
		return nil, err
	}

	m.telemetry.Capture("session_created", map[string]any{
		"as_spec": opts.AsSpec,
		"agent":   opts.AgentType,
	})
	logging.Info(logCtx, "session created",
		slog.String("session_id", session.ID),
		slog.String("name", session.Name),
		slog.String("branch", session.Branch),
	)
	return session, nil
}

// materializeWorktree creates the session branch at the parent branch tip
// and checks it out into an isolated worktree. Bootstraps the parent branch
// at HEAD first when it does not exist yet (freshly initialized repos whose
// default branch name differs from the configured base branch).
func (m *Manager) materializeWorktree(ctx context.Context, session *domain.Session, worktreePath string) error {
	repo, err := gitrepo.Open(m.repoPath)
	if err != nil {
		return err
	}

	if !gitrepo.BranchExists(repo, session.ParentBranch) {
		if err := gitrepo.EnsureBranchAtHead(ctx, m.repoPath, session.ParentBranch); err != nil {
			return err
		}
	}

	parentRef, err := repo.Reference(gitrepo.BranchRef(session.ParentBranch), true)
	if err != nil {
		return domain.NewGitOperationError("resolve parent branch "+session.ParentBranch, err)
	}

	if gitrepo.BranchExists(repo, session.Branch) {
		return domain.ErrWorktreeExists
	}
	if err := gitrepo.CreateBranchAt(repo, session.Branch, parentRef.Hash()); err != nil {
		return err
	}

	if err := gitrepo.AddWorktree(ctx, m.repoPath, worktreePath, session.Branch); err != nil {
		// Roll the branch back so the name is retryable.
		_ = gitrepo.DeleteBranch(repo, session.Branch) //nolint:errcheck // best-effort rollback
		return err
	}
	return nil
}
