package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvega-dev/community-events-api/internal/domain"
)

func TestEventWatcher_FanOut(t *testing.T) {
	w := NewEventWatcher()

	first := w.Subscribe()
	second := w.Subscribe()
	defer first.Close()
	defer second.Close()

	w.Publish(EventChange{Type: EventUpdated, Event: domain.Event{ID: 3}})

	for _, sub := range []*Subscription{first, second} {
		select {
		case change := <-sub.C:
			assert.Equal(t, EventUpdated, change.Type)
			assert.Equal(t, uint(3), change.Event.ID)
		default:
			t.Fatal("expected every subscriber to receive the change")
		}
	}
}

func TestEventWatcher_CloseStopsDelivery(t *testing.T) {
	w := NewEventWatcher()

	sub := w.Subscribe()
	sub.Close()

	// Closing twice must not panic.
	sub.Close()

	_, open := <-sub.C
	require.False(t, open)

	// Publishing after close must not panic either.
	w.Publish(EventChange{Type: EventDeleted, Event: domain.Event{ID: 1}})
}

func TestEventWatcher_SlowSubscriberMissesChanges(t *testing.T) {
	w := NewEventWatcher()

	sub := w.Subscribe()
	defer sub.Close()

	// Overflow the subscription buffer; extra changes are dropped, not blocked on.
	for i := 0; i < 100; i++ {
		w.Publish(EventChange{Type: EventUpdated, Event: domain.Event{ID: uint(i)}})
	}

	received := 0
	for {
		select {
		case <-sub.C:
			received++
			continue
		default:
		}
		break
	}

	assert.Greater(t, received, 0)
	assert.Less(t, received, 100)
}
