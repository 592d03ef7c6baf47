package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"
)

func TestBuildLaunchCommand(t *testing.T) {
	t.Parallel()

	claude, err := agent.Get("claude")
	require.NoError(t, err)

	tests := []struct {
		name            string
		worktree        string
		prompt          string
		skipPermissions bool
		want            string
	}{
		{
			name:     "plain path no prompt",
			worktree: "/work/alpha",
			want:     "cd /work/alpha && claude",
		},
		{
			name:     "path with spaces is quoted",
			worktree: "/work/my repo/alpha",
			want:     `cd "/work/my repo/alpha" && claude`,
		},
		{
			name:     "prompt is quoted",
			worktree: "/work/alpha",
			prompt:   "Fix the login flow",
			want:     `cd /work/alpha && claude "Fix the login flow"`,
		},
		{
			name:     "prompt with ampersands survives quoting",
			worktree: "/work/alpha",
			prompt:   "Check A && B",
			want:     `cd /work/alpha && claude "Check A && B"`,
		},
		{
			name:            "skip permissions flag first",
			worktree:        "/work/alpha",
			prompt:          "go",
			skipPermissions: true,
			want:            "cd /work/alpha && claude --dangerously-skip-permissions go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := buildLaunchCommand(tt.worktree, claude, tt.prompt, tt.skipPermissions)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuoteArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", `""`},
		{"two words", `"two words"`},
		{`say "hi"`, `"say \"hi\""`},
		{"it's", `"it's"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quoteArg(tt.in), "input %q", tt.in)
	}
}

func TestDestFromRemoteURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/org/repo.git", "repo"},
		{"https://github.com/org/repo", "repo"},
		{"git@github.com:org/repo.git", "repo"},
		{"/srv/git/project.git", "project"},
		{"https://github.com/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, destFromRemoteURL(tt.url), "url %q", tt.url)
	}
}

func TestReadPromptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.md")
	require.NoError(t, os.WriteFile(path, []byte("do the thing\n"), 0o600))

	got, err := readPromptFile(path)
	require.NoError(t, err)
	assert.Equal(t, "do the thing\n", got)

	_, err = readPromptFile(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}
