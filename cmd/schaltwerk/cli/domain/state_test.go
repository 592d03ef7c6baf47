package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from SessionState
		to   SessionState
		want bool
	}{
		{name: "spec_to_running", from: StateSpec, to: StateRunning, want: true},
		{name: "running_to_reviewed", from: StateRunning, to: StateReviewed, want: true},
		{name: "reviewed_back_to_running", from: StateReviewed, to: StateRunning, want: true},
		{name: "spec_to_reviewed_skips_running", from: StateSpec, to: StateReviewed, want: false},
		{name: "running_back_to_spec", from: StateRunning, to: StateSpec, want: false},
		{name: "reviewed_back_to_spec", from: StateReviewed, to: StateSpec, want: false},
		{name: "self_transition_spec", from: StateSpec, to: StateSpec, want: true},
		{name: "self_transition_running", from: StateRunning, to: StateRunning, want: true},
		{name: "self_transition_reviewed", from: StateReviewed, to: StateReviewed, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateTransition_ReportsStates(t *testing.T) {
	t.Parallel()

	err := ValidateTransition(StateSpec, StateReviewed)
	require.Error(t, err)

	var stateErr *InvalidStateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, StateSpec, stateErr.Current)
}

func TestValidateTransition_AllowsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateTransition(StateSpec, StateRunning))
	assert.NoError(t, ValidateTransition(StateRunning, StateReviewed))
	assert.NoError(t, ValidateTransition(StateReviewed, StateRunning))
}
