// Package telemetry sends opt-in anonymous usage events. Disabled unless the
// user explicitly opted in via settings; every call is a no-op otherwise.
// The machine id is hashed with an app key so it cannot be correlated across
// applications.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/denisbrodbeck/machineid"
	"github.com/posthog/posthog-go"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/logging"
)

const apiKey = "phc_schaltwerk_public"

// Client reports events. The zero value is a disabled client.
type Client struct {
	mu       sync.Mutex
	ph       posthog.Client
	distinct string
	enabled  bool
}

// NewClient creates a telemetry client. enabled=false returns a no-op client
// so call sites never branch.
func NewClient(ctx context.Context, enabled bool) *Client {
	c := &Client{}
	if !enabled {
		return c
	}

	id, err := machineid.ProtectedID("schaltwerk")
	if err != nil {
		logging.Warn(logging.WithComponent(ctx, "telemetry"),
			"machine id unavailable, telemetry disabled", slog.Any("error", err))
		return c
	}

	ph, err := posthog.NewWithConfig(apiKey, posthog.Config{
		Endpoint: "https://eu.i.posthog.com",
	})
	if err != nil {
		logging.Warn(logging.WithComponent(ctx, "telemetry"),
			"telemetry client init failed", slog.Any("error", err))
		return c
	}

	c.ph = ph
	c.distinct = id
	c.enabled = true
	return c
}

// Capture records an event with optional properties. Fire-and-forget.
func (c *Client) Capture(event string, props map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	properties := posthog.NewProperties()
	for k, v := range props {
		properties.Set(k, v)
	}
	_ = c.ph.Enqueue(posthog.Capture{ //nolint:errcheck // telemetry is best-effort
		DistinctId: c.distinct,
		Event:      event,
		Properties: properties,
	})
}

// Close flushes pending events.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return nil
	}
	c.enabled = false
	return c.ph.Close()
}
