// Package service orchestrates the session lifecycle: creation with name
// reservation and worktree materialization, state transitions, merge
// reconciliation, launches, and teardown. Registries (name reservations,
// terminal locks) are owned by the Manager, not package globals.
package service

import (
	"context"
	"time"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/events"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/gitrepo"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/launch"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/merge"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/paths"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/reserve"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/settings"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/stats"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/store"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/telemetry"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/terminal"
)

// Manager is the engine facade for one repository. Construct once at startup
// with NewManager and tear down with Shutdown on every exit path.
type Manager struct {
	repoPath string
	settings *settings.Settings

	db           *store.DB
	reservations *reserve.Registry
	statsCache   *stats.Cache
	mergeEngine  *merge.Engine
	coordinator  *launch.Coordinator
	bus          *events.Bus
	telemetry    *telemetry.Client

	// now is replaceable for tests.
	now func() time.Time
}

// Options configures NewManager. Zero-value fields get production defaults.
type Options struct {
	// Backend overrides the terminal backend (tests use the fake).
	Backend terminal.Backend
	// Runner overrides the git command runner for merge plans.
	Runner gitrepo.Runner
	// Telemetry overrides the telemetry client.
	Telemetry *telemetry.Client
}

// NewManager opens the repository's database and wires the engine together.
func NewManager(ctx context.Context, repoPath string, cfg *settings.Settings, opts Options) (*Manager, error) {
	db, err := store.Open(paths.DatabasePath(repoPath))
	if err != nil {
		return nil, err
	}

	backend := opts.Backend
	if backend == nil {
		backend = terminal.NewLocalBackend()
	}
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.NewClient(ctx, cfg.TelemetryEnabled())
	}

	return &Manager{
		repoPath:     repoPath,
		settings:     cfg,
		db:           db,
		reservations: reserve.NewRegistry(),
		statsCache:   stats.NewCache(db),
		mergeEngine:  merge.NewEngine(repoPath, opts.Runner),
		coordinator:  launch.NewCoordinator(backend),
		bus:          events.NewBus(),
		telemetry:    tel,
		now:          time.Now,
	}, nil
}

// Events returns a subscription to the engine's notification stream.
func (m *Manager) Events() <-chan events.Event {
	return m.bus.Subscribe()
}

// Store exposes the persistence layer for read paths (list commands, epics).
func (m *Manager) Store() *store.DB {
	return m.db
}

// StatsCache exposes the git stats cache.
func (m *Manager) StatsCache() *stats.Cache {
	return m.statsCache
}

// LaunchInTerminal delegates to the launch coordinator.
func (m *Manager) LaunchInTerminal(ctx context.Context, terminalID string, spec launch.Spec) (string, error) {
	return m.coordinator.LaunchInTerminal(ctx, terminalID, spec)
}

// Shutdown releases all resources. The process entry point calls this on
// every exit path rather than trusting finalizer timing.
func (m *Manager) Shutdown() error {
	m.bus.Close()
	if err := m.telemetry.Close(); err != nil {
		return err
	}
	return m.db.Close()
}
