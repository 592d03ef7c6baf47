package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/paths"
)

func writeSettings(t *testing.T, repoPath, fileName, content string) {
	t.Helper()
	dir := filepath.Join(repoPath, paths.DataDirName)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(content), 0o600))
}

func TestLoad_DefaultsWhenNoFiles(t *testing.T) {
	t.Parallel()
	repo := t.TempDir()

	s, err := Load(repo)
	require.NoError(t, err)
	assert.Equal(t, "schaltwerk", s.BranchPrefix)
	assert.Equal(t, "main", s.BaseBranch)
	assert.Equal(t, "claude", s.DefaultAgent)
	assert.Equal(t, "info", s.LogLevel)
	assert.False(t, s.TelemetryEnabled())
}

func TestLoad_LocalOverridesProject(t *testing.T) {
	t.Parallel()
	repo := t.TempDir()
	writeSettings(t, repo, paths.SettingsFileName, `{"base_branch": "develop", "default_agent": "claude"}`)
	writeSettings(t, repo, paths.SettingsLocalFileName, `{"base_branch": "trunk"}`)

	s, err := Load(repo)
	require.NoError(t, err)
	assert.Equal(t, "trunk", s.BaseBranch)
	assert.Equal(t, "claude", s.DefaultAgent, "local file must not clear fields it does not set")
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	repo := t.TempDir()
	writeSettings(t, repo, paths.SettingsFileName, `{"base_branch": "main", "unknown_key": true}`)

	_, err := Load(repo)
	require.Error(t, err)
}

func TestLoad_EmptyPrefixFallsBackToDefault(t *testing.T) {
	t.Parallel()
	repo := t.TempDir()
	writeSettings(t, repo, paths.SettingsFileName, `{"branch_prefix": ""}`)

	s, err := Load(repo)
	require.NoError(t, err)
	assert.Equal(t, DefaultBranchPrefix, s.BranchPrefix)
}

func TestSessionBranch(t *testing.T) {
	t.Parallel()

	s := &Settings{BranchPrefix: "schaltwerk"}
	assert.Equal(t, "schaltwerk/alpha", s.SessionBranch("alpha"))

	s.BranchPrefix = "agents"
	assert.Equal(t, "agents/fix-auth", s.SessionBranch("fix-auth"))
}

func TestTelemetryEnabled(t *testing.T) {
	t.Parallel()

	s := &Settings{}
	assert.False(t, s.TelemetryEnabled(), "unset means not opted in")

	yes, no := true, false
	s.Telemetry = &no
	assert.False(t, s.TelemetryEnabled())
	s.Telemetry = &yes
	assert.True(t, s.TelemetryEnabled())
}
