package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorktreePath(t *testing.T) {
	t.Parallel()

	got := WorktreePath("/repo", "alpha")
	assert.Equal(t, filepath.Join("/repo", ".schaltwerk", "worktrees", "alpha"), got)
}

func TestDatabasePath(t *testing.T) {
	t.Parallel()

	got := DatabasePath("/repo")
	assert.Equal(t, filepath.Join("/repo", ".schaltwerk", "sessions.db"), got)
}

func TestRepositoryName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "plain", path: "/home/user/myrepo", want: "myrepo"},
		{name: "trailing_slash", path: "/home/user/myrepo/", want: "myrepo"},
		{name: "root_like", path: "/myrepo", want: "myrepo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RepositoryName(tt.path))
		})
	}
}
