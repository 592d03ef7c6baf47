package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_FansOutToAllSubscribers(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(Event{Kind: SessionAdded, SessionID: "s1"})

	got := <-a
	assert.Equal(t, SessionAdded, got.Kind)
	assert.Equal(t, "s1", got.SessionID)
	got = <-b
	assert.Equal(t, "s1", got.SessionID)
}

func TestPublish_DropsWhenSubscriberIsFull(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	sub := bus.Subscribe()

	// One more than the buffer; the overflow event must be dropped, not block.
	for i := range 65 {
		bus.Publish(Event{Kind: GitStatsUpdated, SessionID: string(rune('a' + i%26))})
	}

	count := 0
	for range len(sub) {
		<-sub
		count++
	}
	assert.Equal(t, 64, count)
}

func TestClose_ClosesSubscriberChannels(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	sub := bus.Subscribe()

	bus.Close()

	_, open := <-sub
	require.False(t, open)

	// Publishing after close must not panic.
	bus.Publish(Event{Kind: SessionRemoved})
}
