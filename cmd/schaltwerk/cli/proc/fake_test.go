package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeInspector_Lifecycle(t *testing.T) {
	t.Parallel()
	f := NewFakeInspector()
	f.AddProcess(100, "claude", "--dangerously-skip-permissions")

	assert.True(t, f.IsRunning(100))
	assert.False(t, f.IsRunning(200))

	cmdline, err := f.ReadCmdline(100)
	require.NoError(t, err)
	assert.Equal(t, []string{"claude", "--dangerously-skip-permissions"}, cmdline)

	require.NoError(t, f.SendTerminate(100))
	assert.False(t, f.IsRunning(100), "terminate stops the fake process")
	require.NoError(t, f.SendKill(100))
	assert.Equal(t, []string{"term:100", "kill:100"}, f.Signals())
}

func TestFakeInspector_UnknownPidCmdline(t *testing.T) {
	t.Parallel()
	f := NewFakeInspector()

	_, err := f.ReadCmdline(42)
	assert.Error(t, err)
}
