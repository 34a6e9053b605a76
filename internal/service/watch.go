package service

import (
	"sync"

	"github.com/dvega-dev/community-events-api/internal/domain"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventChange is pushed to subscribers whenever an event is mutated.
type EventChange struct {
	Type  string       `json:"type"`
	Event domain.Event `json:"event"`
}

// Subscription is a live feed of event changes. Close releases the slot;
// it is safe to call more than once.
type Subscription struct {
	C      chan EventChange
	cancel func()
	once   sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// EventWatcher fans event changes out to subscribers. Slow consumers are
// skipped, not waited on: a subscription channel that is full simply misses
// the change. Subscribers treat the feed as "eventually reflects the last
// committed write", never as a complete history.
type EventWatcher struct {
	mu     sync.RWMutex
	subs   map[uint64]chan EventChange
	nextID uint64
}

func NewEventWatcher() *EventWatcher {
	return &EventWatcher{
		subs: make(map[uint64]chan EventChange),
	}
}

func (w *EventWatcher) Subscribe() *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++

	ch := make(chan EventChange, 16)
	w.subs[id] = ch

	return &Subscription{
		C: ch,
		cancel: func() {
			w.mu.Lock()
			defer w.mu.Unlock()

			if c, ok := w.subs[id]; ok {
				delete(w.subs, id)
				close(c)
			}
		},
	}
}

func (w *EventWatcher) Publish(change EventChange) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ch := range w.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
