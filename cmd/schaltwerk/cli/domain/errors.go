// Package domain defines the core entities of the session engine and the
// typed errors every public operation reports. Mutation of the entities goes
// through the state machine and the finalizer in the service package, never
// through direct field writes by callers.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for simple not-found / already-exists conditions.
// Matched with errors.Is.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrSpecNotFound         = errors.New("spec not found")
	ErrEpicNotFound         = errors.New("epic not found")
	ErrWorktreeNotFound     = errors.New("worktree not found")
	ErrWorktreeExists       = errors.New("worktree already exists")
	ErrAgentNotFound        = errors.New("agent not found")
)

// GitOperationError reports a failed git operation with enough context to
// name the operation in logs and user-facing messages.
type GitOperationError struct {
	Operation string
	Message   string
	Err       error
}

func (e *GitOperationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("git %s failed: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("git %s failed: %v", e.Operation, e.Err)
}

func (e *GitOperationError) Unwrap() error { return e.Err }

// NewGitOperationError wraps err as a GitOperationError for the named operation.
func NewGitOperationError(operation string, err error) *GitOperationError {
	return &GitOperationError{Operation: operation, Err: err}
}

// MergeConflictError carries the conflicting paths so callers can present
// actionable resolution UI instead of a generic failure.
type MergeConflictError struct {
	Files   []string
	Message string
}

func (e *MergeConflictError) Error() string {
	if len(e.Files) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Files, ", "))
}

// InvalidStateError reports a state-machine transition that is not allowed
// from the session's current state.
type InvalidStateError struct {
	Current  SessionState
	Expected SessionState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid session state: %s (expected %s)", e.Current, e.Expected)
}

// InvalidInputError reports a rejected input field.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DatabaseError wraps a persistence failure.
type DatabaseError struct {
	Err error
}

func (e *DatabaseError) Error() string { return fmt.Sprintf("database error: %v", e.Err) }
func (e *DatabaseError) Unwrap() error { return e.Err }

// IoError reports a filesystem failure with the path and operation involved.
type IoError struct {
	Operation string
	Path      string
	Err       error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// TerminalOperationError reports a failed terminal backend call.
type TerminalOperationError struct {
	TerminalID string
	Err        error
}

func (e *TerminalOperationError) Error() string {
	return fmt.Sprintf("terminal %s: %v", e.TerminalID, e.Err)
}

func (e *TerminalOperationError) Unwrap() error { return e.Err }
