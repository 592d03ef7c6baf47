// Package launch guarantees at most one in-flight agent-process launch per
// terminal id, with bounded execution time and forced cleanup on timeout.
package launch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/logging"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/terminal"
)

// Timeout bounds one launch pipeline end to end.
const Timeout = 12 * time.Second

// Spec describes a requested launch.
type Spec struct {
	// Command is the raw "cd <path> && <agent> [args]" string.
	Command string
	// Env is extra environment entries for the terminal.
	Env []string
	// Size is the initial pty size; zero means backend default.
	Size terminal.Size
}

// Coordinator serializes launches per terminal id. Construct one at startup
// and share it; each id lazily gets a dedicated mutex that is never removed
// (ids are bounded by the UI's terminal count).
type Coordinator struct {
	backend terminal.Backend

	// mu only guards the map lookup/insert. It is never held during a
	// launch; the per-id locks are what serialize the pipelines.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator builds a coordinator over the backend.
func NewCoordinator(backend terminal.Backend) *Coordinator {
	return &Coordinator{
		backend: backend,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) lockFor(terminalID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[terminalID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[terminalID] = l
	}
	return l
}

// LaunchInTerminal runs the launch pipeline for the terminal id: parse the
// command, resolve binary/args/env from the agent manifest, close any
// existing terminal with the id, create the new one. Concurrent calls for
// the same id serialize; calls for different ids interleave freely.
//
// The pipeline is bounded by Timeout. On timeout the terminal is
// force-closed (best-effort) so the next attempt is not blocked by a wedged
// pty spawn, and a cancellation error is returned. The spawn may still
// complete asynchronously in the background; that race is accepted, not
// hidden.
//
// Returns the shell command string that was (or would be) run.
func (c *Coordinator) LaunchInTerminal(ctx context.Context, terminalID string, spec Spec) (string, error) {
	parsed, err := ParseAgentCommand(spec.Command)
	if err != nil {
		return "", err
	}

	ag, err := agent.Get(parsed.AgentName)
	if err != nil {
		return "", err
	}

	binary := parsed.Binary
	if !strings.Contains(binary, "/") {
		binary = ag.DefaultBinary()
	}
	env := append(append([]string(nil), ag.Env()...), spec.Env...)

	lock := c.lockFor(terminalID)
	lock.Lock()
	defer lock.Unlock()

	launchCtx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.createTerminal(launchCtx, terminalID, parsed, binary, env, spec.Size)
	}()

	logCtx := logging.WithComponent(ctx, "launch")
	select {
	case err := <-done:
		if err != nil {
			return "", err
		}
	case <-launchCtx.Done():
		// Force-close so the next attempt does not inherit a wedged pty.
		// The in-flight create may still land afterwards; see above.
		if closeErr := c.backend.Close(context.WithoutCancel(ctx), terminalID); closeErr != nil {
			logging.Warn(logCtx, "force-close after launch timeout failed",
				slog.String("terminal_id", terminalID), slog.Any("error", closeErr))
		}
		return "", fmt.Errorf("launch in terminal %s: %w", terminalID, launchCtx.Err())
	}

	shellCommand := binary
	if len(parsed.Args) > 0 {
		shellCommand += " " + strings.Join(parsed.Args, " ")
	}
	logging.Info(logCtx, "launched agent",
		slog.String("terminal_id", terminalID),
		slog.String("agent", string(parsed.AgentName)),
		slog.String("cwd", parsed.Cwd),
	)
	return shellCommand, nil
}

func (c *Coordinator) createTerminal(ctx context.Context, terminalID string, parsed *ParsedCommand, binary string, env []string, size terminal.Size) error {
	exists, err := c.backend.Exists(ctx, terminalID)
	if err != nil {
		return err
	}
	if exists {
		if err := c.backend.Close(ctx, terminalID); err != nil {
			return err
		}
	}
	if size.Rows > 0 || size.Cols > 0 {
		return c.backend.CreateWithAppSized(ctx, terminalID, parsed.Cwd, binary, parsed.Args, env, size)
	}
	return c.backend.CreateWithApp(ctx, terminalID, parsed.Cwd, binary, parsed.Args, env)
}
