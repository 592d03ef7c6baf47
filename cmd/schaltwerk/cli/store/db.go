// Package store persists sessions, specs, epics and git stats in a
// repository-local SQLite database. The database is the source of truth for
// "this session exists"; the in-memory name reservation only bridges the gap
// between a create request and the row landing here.
//
// Connections are short-lived from the caller's perspective: no method holds
// database state across a suspension point.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

// DB wraps the SQLite connection with initialization logic.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at the given path, runs schema
// initialization, and configures WAL mode for concurrent reads.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if err := initSchema(db); err != nil {
		db.Close() //nolint:errcheck,gosec // already failing
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			version_group_id TEXT NOT NULL DEFAULT '',
			version_number INTEGER NOT NULL DEFAULT 0,
			repository_path TEXT NOT NULL,
			repository_name TEXT NOT NULL,
			branch TEXT NOT NULL,
			parent_branch TEXT NOT NULL,
			original_parent_branch TEXT NOT NULL,
			worktree_path TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			session_state TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			last_activity INTEGER,
			initial_prompt TEXT NOT NULL DEFAULT '',
			epic_id TEXT NOT NULL DEFAULT '',
			ready_to_merge INTEGER NOT NULL DEFAULT 0,
			resume_allowed INTEGER NOT NULL DEFAULT 1,
			pending_name_generation INTEGER NOT NULL DEFAULT 0,
			was_auto_generated INTEGER NOT NULL DEFAULT 0,
			original_agent_type TEXT NOT NULL DEFAULT '',
			original_skip_permissions INTEGER NOT NULL DEFAULT 0,
			UNIQUE(repository_path, name)
		)`,
		`CREATE TABLE IF NOT EXISTS specs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			epic_id TEXT NOT NULL DEFAULT '',
			repository_path TEXT NOT NULL,
			repository_name TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			UNIQUE(repository_path, name)
		)`,
		`CREATE TABLE IF NOT EXISTS epics (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			repository_path TEXT NOT NULL,
			UNIQUE(repository_path, name)
		)`,
		`CREATE TABLE IF NOT EXISTS git_stats (
			session_id TEXT PRIMARY KEY,
			lines_added INTEGER NOT NULL DEFAULT 0,
			lines_removed INTEGER NOT NULL DEFAULT 0,
			calculated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_repo ON sessions(repository_path)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_group ON sessions(version_group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_specs_repo ON specs(repository_path)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}
