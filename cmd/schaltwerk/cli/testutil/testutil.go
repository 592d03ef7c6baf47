// Package testutil provides git repository fixtures for tests.
//
// It creates real repositories in t.TempDir() with an initial commit on a
// configurable default branch, plus helpers for branching and committing so
// lifecycle and merge tests can build realistic histories.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TestRepo is an initialized git repository with one commit on DefaultBranch.
type TestRepo struct {
	// Dir is the absolute path to the repository root.
	Dir string

	// Repo is the go-git repository handle.
	Repo *git.Repository

	// DefaultBranch is the branch the initial commit was made on.
	DefaultBranch string
}

// RepoOpts configures NewTestRepo.
type RepoOpts struct {
	// DefaultBranch is the initial branch name. Defaults to "main".
	DefaultBranch string

	// Files maps relative paths to contents for the initial commit.
	// Defaults to a single README.
	Files map[string]string
}

func (o *RepoOpts) withDefaults() RepoOpts {
	out := *o
	if out.DefaultBranch == "" {
		out.DefaultBranch = "main"
	}
	if out.Files == nil {
		out.Files = map[string]string{"README.md": "# test repo\n"}
	}
	return out
}

// NewTestRepo creates an isolated git repository with an initial commit.
// Uses t.TempDir() so cleanup is automatic.
func NewTestRepo(t *testing.T, opts RepoOpts) *TestRepo {
	t.Helper()
	opts = opts.withDefaults()

	dir := t.TempDir()
	// Resolve symlinks (macOS /var -> /private/var)
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("git init: %v", err)
	}

	// go-git initializes HEAD to master; point it at the wanted branch
	// before the first commit so the commit lands there.
	head := plumbing.NewSymbolicReference(plumbing.HEAD,
		plumbing.NewBranchReferenceName(opts.DefaultBranch))
	if err := repo.Storer.SetReference(head); err != nil {
		t.Fatalf("set HEAD: %v", err)
	}

	tr := &TestRepo{Dir: dir, Repo: repo, DefaultBranch: opts.DefaultBranch}

	var files []string
	for name, content := range opts.Files {
		tr.WriteFile(t, name, content)
		files = append(files, name)
	}
	tr.AddAndCommit(t, "Initial commit", files...)

	return tr
}

// WriteFile creates or overwrites a file relative to the repo root.
func (tr *TestRepo) WriteFile(t *testing.T, relPath, content string) {
	t.Helper()
	full := filepath.Join(tr.Dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", relPath, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", relPath, err)
	}
}

// AddAndCommit stages the given files and creates a commit.
// Returns the new HEAD hash.
func (tr *TestRepo) AddAndCommit(t *testing.T, message string, files ...string) plumbing.Hash {
	t.Helper()
	wt, err := tr.Repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	for _, f := range files {
		if _, err := wt.Add(f); err != nil {
			t.Fatalf("add %s: %v", f, err)
		}
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

// CreateBranch creates a branch at the current HEAD without checking it out.
func (tr *TestRepo) CreateBranch(t *testing.T, name string) {
	t.Helper()
	head, err := tr.Repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	if err := tr.Repo.Storer.SetReference(ref); err != nil {
		t.Fatalf("create branch %s: %v", name, err)
	}
}

// Checkout switches the main worktree to a branch via the git CLI
// (go-git v5 checkout bug).
func (tr *TestRepo) Checkout(t *testing.T, branch string) {
	t.Helper()
	tr.Git(t, "checkout", branch)
}

// CommitOn checks out a branch, writes a file, and commits it. HEAD is left
// on the branch. Returns the new commit hash.
func (tr *TestRepo) CommitOn(t *testing.T, branch, relPath, content, message string) plumbing.Hash {
	t.Helper()
	tr.Checkout(t, branch)
	tr.WriteFile(t, relPath, content)
	return tr.AddAndCommit(t, message, relPath)
}

// Git runs a git command in the repository and fails the test on error.
func (tr *TestRepo) Git(t *testing.T, args ...string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = tr.Dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return string(out)
}
