package terminal

import (
	"context"
	"sync"
	"time"
)

// FakeBackend is an in-memory Backend for tests. It records every call and
// can be told to block or fail on create.
type FakeBackend struct {
	mu        sync.Mutex
	terminals map[string]FakeTerminal
	calls     []string

	// CreateDelay makes creates sleep, for timeout tests.
	CreateDelay time.Duration
	// CreateIgnoresCancel makes a delayed create sleep out its full delay
	// even when the context is cancelled, modeling a wedged pty spawn.
	CreateIgnoresCancel bool
	// CreateErr is returned from creates when non-nil.
	CreateErr error
}

// FakeTerminal records what a terminal was created with.
type FakeTerminal struct {
	Cwd     string
	Command string
	Args    []string
	Env     []string
	Size    Size
}

// NewFakeBackend returns an empty fake.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{terminals: make(map[string]FakeTerminal)}
}

func (b *FakeBackend) Exists(_ context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "exists:"+id)
	_, ok := b.terminals[id]
	return ok, nil
}

func (b *FakeBackend) Close(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "close:"+id)
	delete(b.terminals, id)
	return nil
}

func (b *FakeBackend) CreateWithApp(ctx context.Context, id, cwd, command string, args, env []string) error {
	return b.CreateWithAppSized(ctx, id, cwd, command, args, env, Size{})
}

func (b *FakeBackend) CreateWithAppSized(ctx context.Context, id, cwd, command string, args, env []string, size Size) error {
	if b.CreateDelay > 0 {
		if b.CreateIgnoresCancel {
			time.Sleep(b.CreateDelay)
		} else {
			select {
			case <-time.After(b.CreateDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "create:"+id)
	if b.CreateErr != nil {
		return b.CreateErr
	}
	b.terminals[id] = FakeTerminal{Cwd: cwd, Command: command, Args: args, Env: env, Size: size}
	return nil
}

// Terminal returns the recorded terminal for id.
func (b *FakeBackend) Terminal(id string) (FakeTerminal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.terminals[id]
	return t, ok
}

// Count returns the number of live terminals.
func (b *FakeBackend) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.terminals)
}

// Calls returns the recorded call log.
func (b *FakeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}
