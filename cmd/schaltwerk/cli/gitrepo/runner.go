package gitrepo

import "context"

// Runner executes a git command in a directory and returns combined output.
// The merge engine takes one of these so tests can substitute a double and
// assert on the command plan without touching a repository.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs commands with the host git binary.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	return runGit(ctx, dir, args...)
}
