// Package reserve holds transient in-memory name reservations. A reservation
// exists only between "creation requested" and "creation finalized or
// aborted"; the database row is the durable source of truth afterwards.
//
// The registry is an explicitly owned object constructed once at startup and
// injected where needed, so tests get a fresh one each.
package reserve

import (
	"sync"
)

// Registry reserves session names per repository. It is the sole defense
// against two concurrent "create session X" requests both proceeding to
// create worktree X before either has a database row.
type Registry struct {
	mu   sync.Mutex
	held map[key]struct{}
}

type key struct {
	repoPath string
	name     string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{held: make(map[key]struct{})}
}

// Reserve takes a hold on name within repoPath. Returns false when the name
// is already held; the caller must reject the creation immediately.
func (r *Registry) Reserve(repoPath, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{repoPath, name}
	if _, taken := r.held[k]; taken {
		return false
	}
	r.held[k] = struct{}{}
	return true
}

// Release drops the hold. Safe to call for a name that is not held.
// Every code path after a successful Reserve must end in Release, success or
// failure alike, or a retry of the name becomes impossible.
func (r *Registry) Release(repoPath, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, key{repoPath, name})
}

// Held reports whether the name is currently reserved. Intended for tests.
func (r *Registry) Held(repoPath, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, taken := r.held[key{repoPath, name}]
	return taken
}
