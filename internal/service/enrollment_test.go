package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvega-dev/community-events-api/internal/domain"
	"github.com/dvega-dev/community-events-api/internal/repository"
)

// memEventRepository keeps events in memory and runs each transaction under a
// lock, giving tests the same atomic read-modify-write guarantee the real
// store provides with version-checked updates.
type memEventRepository struct {
	mu     sync.Mutex
	events map[uint]domain.Event
}

func newMemEventRepository(events ...domain.Event) *memEventRepository {
	m := &memEventRepository{
		events: make(map[uint]domain.Event),
	}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *memEventRepository) Transact(_ context.Context, eventID uint, f repository.TxFunc) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}

	next, err := f(event)
	if err != nil {
		return domain.Event{}, err
	}

	next.ID = event.ID
	m.events[eventID] = next

	return next, nil
}

func (m *memEventRepository) get(eventID uint) domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.events[eventID]
}

func TestEnrollmentService_Join(t *testing.T) {
	tests := []struct {
		name    string
		event   domain.Event
		userID  uint
		wantErr error
	}{
		{
			name:   "joins an event with free capacity",
			event:  domain.Event{ID: 1, Participants: []uint{10}, MaxParticipants: 3},
			userID: 20,
		},
		{
			name:    "rejects a duplicate join",
			event:   domain.Event{ID: 1, Participants: []uint{10}, MaxParticipants: 3},
			userID:  10,
			wantErr: ErrAlreadyEnrolled,
		},
		{
			name:    "rejects a join when full",
			event:   domain.Event{ID: 1, Participants: []uint{10, 11}, MaxParticipants: 2},
			userID:  20,
			wantErr: ErrEventFull,
		},
		{
			name:    "reports already enrolled before full on a full event",
			event:   domain.Event{ID: 1, Participants: []uint{10, 11}, MaxParticipants: 2},
			userID:  10,
			wantErr: ErrAlreadyEnrolled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemEventRepository(tt.event)
			svc := NewEnrollmentService(repo, NewEventWatcher())

			event, err := svc.Join(context.Background(), tt.event.ID, tt.userID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.event.Participants, repo.get(tt.event.ID).Participants)
				return
			}

			require.NoError(t, err)
			assert.Contains(t, event.Participants, tt.userID)
			assert.Contains(t, repo.get(tt.event.ID).Participants, tt.userID)
		})
	}
}

func TestEnrollmentService_Join_EventNotFound(t *testing.T) {
	svc := NewEnrollmentService(newMemEventRepository(), NewEventWatcher())

	_, err := svc.Join(context.Background(), 404, 10)

	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestEnrollmentService_Join_CapacityUnderContention(t *testing.T) {
	const (
		capacity = 5
		joiners  = 50
	)

	repo := newMemEventRepository(domain.Event{ID: 1, Participants: []uint{}, MaxParticipants: capacity})
	svc := NewEnrollmentService(repo, NewEventWatcher())

	var wg sync.WaitGroup
	errs := make([]error, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Join(context.Background(), 1, uint(100+i))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrEventFull)
	}

	assert.Equal(t, capacity, succeeded)
	assert.Len(t, repo.get(1).Participants, capacity)
}

func TestEnrollmentService_Leave(t *testing.T) {
	tests := []struct {
		name             string
		participants     []uint
		userID           uint
		wantParticipants []uint
		wantNotified     bool
	}{
		{
			name:             "removes an enrolled user",
			participants:     []uint{10, 20, 30},
			userID:           20,
			wantParticipants: []uint{10, 30},
			wantNotified:     true,
		},
		{
			name:             "leaving without being enrolled is a no-op",
			participants:     []uint{10, 30},
			userID:           20,
			wantParticipants: []uint{10, 30},
			wantNotified:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemEventRepository(domain.Event{ID: 1, Participants: tt.participants, MaxParticipants: 10})
			watcher := NewEventWatcher()
			sub := watcher.Subscribe()
			defer sub.Close()

			svc := NewEnrollmentService(repo, watcher)

			event, err := svc.Leave(context.Background(), 1, tt.userID)

			require.NoError(t, err)
			assert.Equal(t, tt.wantParticipants, event.Participants)
			assert.Equal(t, tt.wantParticipants, repo.get(1).Participants)

			select {
			case change := <-sub.C:
				require.True(t, tt.wantNotified, "unexpected change notification %+v", change)
				assert.Equal(t, EventUpdated, change.Type)
			default:
				require.False(t, tt.wantNotified, "expected a change notification")
			}
		})
	}
}

// replayEventRepository feeds the transaction a sequence of snapshots, as the
// real store does when version conflicts force retries. Only the last
// snapshot's outcome is committed.
type replayEventRepository struct {
	snapshots []domain.Event
}

func (r *replayEventRepository) Transact(_ context.Context, _ uint, f repository.TxFunc) (domain.Event, error) {
	var committed domain.Event
	for _, snapshot := range r.snapshots {
		next, err := f(snapshot)
		if err != nil {
			return domain.Event{}, err
		}
		committed = next
	}

	return committed, nil
}

func TestEnrollmentService_Leave_RetriedNoOpDoesNotNotify(t *testing.T) {
	// The first snapshot still lists the user, but a concurrent leave wins the
	// race; the committed attempt sees the user already gone.
	repo := &replayEventRepository{snapshots: []domain.Event{
		{ID: 1, Participants: []uint{10, 20}, MaxParticipants: 10},
		{ID: 1, Participants: []uint{20}, MaxParticipants: 10},
	}}

	watcher := NewEventWatcher()
	sub := watcher.Subscribe()
	defer sub.Close()

	svc := NewEnrollmentService(repo, watcher)

	event, err := svc.Leave(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, []uint{20}, event.Participants)

	select {
	case change := <-sub.C:
		t.Fatalf("no-op leave must not notify watchers, got %+v", change)
	default:
	}
}

func TestEnrollmentService_Leave_EventNotFound(t *testing.T) {
	svc := NewEnrollmentService(newMemEventRepository(), NewEventWatcher())

	_, err := svc.Leave(context.Background(), 404, 10)

	require.ErrorIs(t, err, ErrEventNotFound)
}
