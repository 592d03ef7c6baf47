package domain

// SessionState is the fine-grained lifecycle state of a session.
type SessionState string

const (
	// StateSpec is a session that exists only as a row; no worktree yet.
	StateSpec SessionState = "spec"
	// StateRunning is a session with a materialized worktree an agent can work in.
	StateRunning SessionState = "running"
	// StateReviewed is a session whose work has been marked reviewed and is
	// ready for reconciliation into the parent branch.
	StateReviewed SessionState = "reviewed"
)

// SessionStateFromString parses a stored state string. Unknown or empty
// values default to StateSpec, the safest interpretation for old rows.
func SessionStateFromString(s string) SessionState {
	switch s {
	case string(StateRunning):
		return StateRunning
	case string(StateReviewed):
		return StateReviewed
	default:
		return StateSpec
	}
}

// transitions lists the allowed state changes. Reviewed -> Running covers
// "unmark reviewed"; Spec -> Running is spec promotion.
var transitions = map[SessionState][]SessionState{
	StateSpec:     {StateRunning},
	StateRunning:  {StateReviewed},
	StateReviewed: {StateRunning},
}

// CanTransition reports whether moving from one state to another is allowed.
// Self-transitions are permitted and are no-ops for the caller.
func CanTransition(from, to SessionState) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidStateError when the transition is not
// allowed, naming the state the caller would have needed.
func ValidateTransition(from, to SessionState) error {
	if CanTransition(from, to) {
		return nil
	}
	expected := StateRunning
	if to == StateRunning {
		// Running is reachable from everything except Running itself.
		expected = StateSpec
	}
	return &InvalidStateError{Current: from, Expected: expected}
}
