// Package events is the fire-and-forget notification channel to the UI
// layer. Delivery is best-effort and never required for correctness; a
// subscriber that cannot keep up loses events rather than blocking the
// engine.
package events

import (
	"sync"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// Kind identifies an event type.
type Kind string

const (
	SessionAdded      Kind = "session.added"
	SessionRemoved    Kind = "session.removed"
	StateTransitioned Kind = "session.state"
	GitStatsUpdated   Kind = "session.stats"
)

// Event is one notification.
type Event struct {
	Kind      Kind
	SessionID string
	State     domain.SessionState
	Stats     *domain.GitStats
}

// Bus fans events out to subscribers.
type Bus struct {
	mu   sync.Mutex
	subs []chan Event
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a buffered channel of events. The channel is closed by
// Close.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, 64)
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers the event to every subscriber without blocking. Full
// subscriber buffers drop the event.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
