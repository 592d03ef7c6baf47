package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"

	_ "github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent/claude"
	_ "github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent/gemini"
	_ "github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent/opencode"
)

func TestList_SortedAndComplete(t *testing.T) {
	t.Parallel()

	names := agent.List()
	assert.Equal(t, []agent.Name{"claude", "gemini", "opencode"}, names)
}

func TestGet_UnknownAgent(t *testing.T) {
	t.Parallel()

	_, err := agent.Get("vim")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestClaudeBuildArgs(t *testing.T) {
	t.Parallel()

	ag, err := agent.Get("claude")
	require.NoError(t, err)

	assert.Empty(t, ag.BuildArgs("", false), "no prompt, no flags")
	assert.Equal(t, []string{"--dangerously-skip-permissions"}, ag.BuildArgs("", true))
	assert.Equal(t, []string{"--dangerously-skip-permissions", "fix tests"}, ag.BuildArgs("fix tests", true))
}

func TestAgents_HaveBinaries(t *testing.T) {
	t.Parallel()

	for _, name := range agent.List() {
		ag, err := agent.Get(name)
		require.NoError(t, err)
		assert.NotEmpty(t, ag.DefaultBinary(), "agent %s", name)
		assert.NotEmpty(t, ag.Description(), "agent %s", name)
	}
}
