// Package paths centralizes filesystem layout for schaltwerk data inside a
// repository. All session worktrees and the database live under the
// repository-local .schaltwerk directory so a repo is fully self-contained.
package paths

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DataDirName is the repository-local directory holding all schaltwerk state.
	DataDirName = ".schaltwerk"
	// WorktreesDirName is the subdirectory holding session worktrees.
	WorktreesDirName = "worktrees"
	// DatabaseFileName is the SQLite database file name.
	DatabaseFileName = "sessions.db"
	// SettingsFileName is the settings file name inside the data dir.
	SettingsFileName = "settings.json"
	// SettingsLocalFileName is the uncommitted local settings override.
	SettingsLocalFileName = "settings.local.json"
)

// DataDir returns the schaltwerk data directory for a repository.
func DataDir(repoPath string) string {
	return filepath.Join(repoPath, DataDirName)
}

// WorktreePath returns the worktree directory for a session name.
func WorktreePath(repoPath, sessionName string) string {
	return filepath.Join(repoPath, DataDirName, WorktreesDirName, sessionName)
}

// DatabasePath returns the SQLite database path for a repository.
func DatabasePath(repoPath string) string {
	return filepath.Join(repoPath, DataDirName, DatabaseFileName)
}

// SettingsPath returns the settings file path for a repository.
func SettingsPath(repoPath string) string {
	return filepath.Join(repoPath, DataDirName, SettingsFileName)
}

// SettingsLocalPath returns the local settings override path for a repository.
func SettingsLocalPath(repoPath string) string {
	return filepath.Join(repoPath, DataDirName, SettingsLocalFileName)
}

// RepoRoot resolves the root of the git repository containing the current
// working directory. Linked worktrees resolve to their own root, not the
// main worktree's.
func RepoRoot() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RepositoryName derives a display name for a repository from its path.
func RepositoryName(repoPath string) string {
	return filepath.Base(filepath.Clean(repoPath))
}
