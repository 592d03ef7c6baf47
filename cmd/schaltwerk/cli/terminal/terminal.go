// Package terminal defines the backend contract the launch coordinator
// drives, plus a local pty-backed implementation and a test double.
// Rendering and keystroke transport are the embedding shell's problem; this
// package only owns process/pty lifetime per terminal id.
package terminal

import "context"

// Size is a pty size request.
type Size struct {
	Rows uint16
	Cols uint16
}

// Backend manages terminals by id. Close must be idempotent: closing an id
// that does not exist is not an error.
type Backend interface {
	// Exists reports whether a terminal with the id is alive.
	Exists(ctx context.Context, id string) (bool, error)

	// Close tears down the terminal and its process, if any.
	Close(ctx context.Context, id string) error

	// CreateWithApp starts command in a new terminal with the given working
	// directory, arguments and extra environment.
	CreateWithApp(ctx context.Context, id, cwd, command string, args, env []string) error

	// CreateWithAppSized is CreateWithApp with an initial pty size.
	CreateWithAppSized(ctx context.Context, id, cwd, command string, args, env []string, size Size) error
}
