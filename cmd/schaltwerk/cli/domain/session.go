package domain

import (
	"time"
)

// SessionStatus is the coarse lifecycle status of a session row.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCancelled SessionStatus = "cancelled"
	StatusMerged    SessionStatus = "merged"
)

// Session is a unit of isolated work: one branch, one worktree, one agent.
//
// Invariant: WorktreePath exists on disk iff State != StateSpec.
type Session struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`

	// VersionGroupID groups multi-variant sessions created from the same
	// request; VersionNumber orders them within the group.
	VersionGroupID string `json:"version_group_id,omitempty"`
	VersionNumber  int    `json:"version_number,omitempty"`

	RepositoryPath string `json:"repository_path"`
	RepositoryName string `json:"repository_name"`

	Branch       string `json:"branch"`
	ParentBranch string `json:"parent_branch"`
	// OriginalParentBranch is an immutable snapshot of the parent branch
	// taken at creation. ParentBranch may be retargeted later; this never is.
	OriginalParentBranch string `json:"original_parent_branch"`

	WorktreePath string `json:"worktree_path,omitempty"`

	Status SessionStatus `json:"status"`
	State  SessionState  `json:"session_state"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastActivity *time.Time `json:"last_activity,omitempty"`

	InitialPrompt string `json:"initial_prompt,omitempty"`
	EpicID        string `json:"epic_id,omitempty"`

	ReadyToMerge          bool `json:"ready_to_merge"`
	ResumeAllowed         bool `json:"resume_allowed"`
	PendingNameGeneration bool `json:"pending_name_generation"`
	WasAutoGenerated      bool `json:"was_auto_generated"`

	OriginalAgentType       string `json:"original_agent_type,omitempty"`
	OriginalSkipPermissions bool   `json:"original_skip_permissions"`
}

// HasWorktree reports whether the session should have a worktree on disk.
func (s *Session) HasWorktree() bool {
	return s.State != StateSpec && s.WorktreePath != ""
}

// Spec is a draft task description not yet backed by a worktree/branch.
// It is promoted to a Session or deleted directly.
type Spec struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DisplayName    string    `json:"display_name,omitempty"`
	EpicID         string    `json:"epic_id,omitempty"`
	RepositoryPath string    `json:"repository_path"`
	RepositoryName string    `json:"repository_name"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Epic is a named, colored grouping that sessions and specs may reference.
// Deleting an epic clears the reference on all members; it never cascades.
type Epic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// GitStats is a cached added/removed line count for a session's worktree
// relative to its parent branch.
type GitStats struct {
	SessionID    string    `json:"session_id"`
	LinesAdded   int       `json:"lines_added"`
	LinesRemoved int       `json:"lines_removed"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// GitStatsFreshness is how long a GitStats row is served without recompute.
const GitStatsFreshness = 60 * time.Second

// Fresh reports whether the stats are still within the freshness window.
func (g *GitStats) Fresh(now time.Time) bool {
	return now.Sub(g.CalculatedAt) <= GitStatsFreshness
}
