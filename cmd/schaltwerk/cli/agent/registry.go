package agent

import (
	"fmt"
	"sort"
	"sync"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// Factory creates an agent instance.
type Factory func() Agent

var (
	registryMu sync.RWMutex
	registry   = make(map[Name]Factory)
)

// Register adds an agent to the registry. Called from init() in each agent
// package; a duplicate name panics because it is a programming error.
func Register(name Name, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("agent %q registered twice", name))
	}
	registry[name] = factory
}

// Get returns the agent registered under name.
func Get(name Name) (Agent, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown agent %q", domain.ErrAgentNotFound, name)
	}
	return factory(), nil
}

// List returns registered agent names, sorted.
func List() []Name {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]Name, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
