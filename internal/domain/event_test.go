package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, IsValidCategory(c), c)
	}

	assert.False(t, IsValidCategory("Gardening"))
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("sports"), "categories are case sensitive")
}

func TestEvent_HasParticipant(t *testing.T) {
	event := Event{Participants: []uint{10, 20}}

	assert.True(t, event.HasParticipant(10))
	assert.False(t, event.HasParticipant(30))

	empty := Event{}
	assert.False(t, empty.HasParticipant(10))
}

func TestEvent_IsFull(t *testing.T) {
	assert.False(t, (&Event{Participants: []uint{10}, MaxParticipants: 2}).IsFull())
	assert.True(t, (&Event{Participants: []uint{10, 20}, MaxParticipants: 2}).IsFull())
	assert.True(t, (&Event{MaxParticipants: 0}).IsFull())
}

func TestEvent_HasEnded(t *testing.T) {
	now := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)

	past := Event{ScheduledAt: now.Add(-time.Minute)}
	future := Event{ScheduledAt: now.Add(time.Minute)}
	exact := Event{ScheduledAt: now}

	assert.True(t, past.HasEnded(now))
	assert.False(t, future.HasEnded(now))
	assert.False(t, exact.HasEnded(now), "an event starting right now has not ended")
}
