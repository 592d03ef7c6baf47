package terminal

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/proc"
)

// closeGrace is how long Close waits for a terminated process to exit
// before escalating to SIGKILL.
const closeGrace = 500 * time.Millisecond

// LocalBackend runs terminals as pty-attached child processes on this host.
type LocalBackend struct {
	mu        sync.Mutex
	terminals map[string]*localTerminal
	inspect   proc.Inspector
}

type localTerminal struct {
	cmd *exec.Cmd
	pty *os.File
}

// NewLocalBackend returns an empty backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		terminals: make(map[string]*localTerminal),
		inspect:   proc.NewInspector(),
	}
}

// Exists reports whether the terminal's process is still running.
func (b *LocalBackend) Exists(_ context.Context, id string) (bool, error) {
	b.mu.Lock()
	t, ok := b.terminals[id]
	b.mu.Unlock()
	if !ok {
		return false, nil
	}
	// ProcessState is set once Wait has reaped the child.
	if t.cmd.ProcessState != nil {
		return false, nil
	}
	return b.inspect.IsRunning(t.cmd.Process.Pid), nil
}

// Close tears down the terminal: SIGTERM, a short grace period, then
// SIGKILL for anything still alive. Closing an unknown id is a no-op.
func (b *LocalBackend) Close(_ context.Context, id string) error {
	b.mu.Lock()
	t, ok := b.terminals[id]
	delete(b.terminals, id)
	b.mu.Unlock()
	if !ok {
		return nil
	}
	if t.cmd.Process != nil {
		pid := t.cmd.Process.Pid
		_ = b.inspect.SendTerminate(pid) //nolint:errcheck // already-dead process is fine
		deadline := time.Now().Add(closeGrace)
		for b.inspect.IsRunning(pid) && time.Now().Before(deadline) {
			time.Sleep(25 * time.Millisecond)
		}
		if b.inspect.IsRunning(pid) {
			_ = b.inspect.SendKill(pid) //nolint:errcheck // best effort
		}
	}
	if err := t.pty.Close(); err != nil {
		return &domain.TerminalOperationError{TerminalID: id, Err: err}
	}
	return nil
}

// CreateWithApp starts command attached to a fresh pty under the id.
// An existing terminal with the same id is closed first.
func (b *LocalBackend) CreateWithApp(ctx context.Context, id, cwd, command string, args, env []string) error {
	return b.create(ctx, id, cwd, command, args, env, nil)
}

// CreateWithAppSized is CreateWithApp with an initial pty size.
func (b *LocalBackend) CreateWithAppSized(ctx context.Context, id, cwd, command string, args, env []string, size Size) error {
	return b.create(ctx, id, cwd, command, args, env, &pty.Winsize{Rows: size.Rows, Cols: size.Cols})
}

func (b *LocalBackend) create(ctx context.Context, id, cwd, command string, args, env []string, size *pty.Winsize) error {
	if err := b.Close(ctx, id); err != nil {
		return err
	}

	cmd := exec.Command(command, args...) //nolint:gosec // command validated by the launch coordinator
	cmd.Dir = cwd
	cmd.Env = append(os.Environ(), env...)

	var ptmx *os.File
	var err error
	if size != nil {
		ptmx, err = pty.StartWithSize(cmd, size)
	} else {
		ptmx, err = pty.Start(cmd)
	}
	if err != nil {
		return &domain.TerminalOperationError{TerminalID: id, Err: err}
	}

	b.mu.Lock()
	b.terminals[id] = &localTerminal{cmd: cmd, pty: ptmx}
	b.mu.Unlock()

	// Reap the child so Exists can observe exit.
	go func() {
		_ = cmd.Wait() //nolint:errcheck // exit status surfaces through ProcessState
	}()

	return nil
}
