package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvega-dev/community-events-api/internal/domain"
	"github.com/dvega-dev/community-events-api/internal/repository/dao"
)

// eventDAOStub serves a single event and fails the first conflictsLeft
// version-checked writes, mimicking concurrent writers winning the race.
type eventDAOStub struct {
	event         dao.Event
	conflictsLeft int

	findCalls   int
	updateCalls int
}

func (s *eventDAOStub) Insert(_ context.Context, event dao.Event) (dao.Event, error) {
	event.ID = 1
	s.event = event
	return event, nil
}

func (s *eventDAOStub) FindByID(_ context.Context, id uint) (dao.Event, error) {
	s.findCalls++
	if id != s.event.ID {
		return dao.Event{}, dao.ErrEventNotFound
	}
	return s.event, nil
}

func (s *eventDAOStub) UpdateWithVersion(_ context.Context, event dao.Event) (dao.Event, error) {
	s.updateCalls++
	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		// A competing writer commits first and bumps the version.
		s.event.Version++
		return dao.Event{}, dao.ErrVersionConflict
	}
	if event.Version != s.event.Version {
		return dao.Event{}, dao.ErrVersionConflict
	}

	event.Version++
	s.event = event
	return event, nil
}

func (s *eventDAOStub) UpdateRating(_ context.Context, eventID uint, average float64, count int) error {
	if eventID != s.event.ID {
		return dao.ErrEventNotFound
	}
	s.event.AverageRating = average
	s.event.RatingCount = count
	return nil
}

func (s *eventDAOStub) Delete(_ context.Context, id uint) error {
	if id != s.event.ID {
		return dao.ErrEventNotFound
	}
	return nil
}

func (s *eventDAOStub) ListUpcoming(_ context.Context, _ time.Time) ([]dao.Event, error) {
	return []dao.Event{s.event}, nil
}

func (s *eventDAOStub) ListPast(_ context.Context, _ time.Time) ([]dao.Event, error) {
	return nil, nil
}

func (s *eventDAOStub) ListByOrganizer(_ context.Context, _ uint) ([]dao.Event, error) {
	return []dao.Event{s.event}, nil
}

func storedEvent() dao.Event {
	return dao.Event{
		ID:              1,
		Title:           "Street Food Night",
		Category:        "Food",
		ScheduledAt:     time.Date(2026, 10, 3, 18, 0, 0, 0, time.UTC),
		OrganizerID:     7,
		Participants:    []uint{10},
		MaxParticipants: 5,
		Version:         3,
	}
}

func appendParticipant(userID uint) TxFunc {
	return func(event domain.Event) (domain.Event, error) {
		event.Participants = append(event.Participants, userID)
		return event, nil
	}
}

func TestEventRepository_Transact(t *testing.T) {
	t.Run("commits in one attempt without contention", func(t *testing.T) {
		stub := &eventDAOStub{event: storedEvent()}
		repo := NewEventRepository(stub)

		event, err := repo.Transact(context.Background(), 1, appendParticipant(20))

		require.NoError(t, err)
		assert.Equal(t, []uint{10, 20}, event.Participants)
		assert.Equal(t, 1, stub.findCalls)
		assert.Equal(t, 1, stub.updateCalls)
	})

	t.Run("retries version conflicts until the write lands", func(t *testing.T) {
		stub := &eventDAOStub{event: storedEvent(), conflictsLeft: 3}
		repo := NewEventRepository(stub)

		event, err := repo.Transact(context.Background(), 1, appendParticipant(20))

		require.NoError(t, err)
		assert.Contains(t, event.Participants, uint(20))
		assert.Equal(t, 4, stub.updateCalls)
	})

	t.Run("gives up after the retry budget is spent", func(t *testing.T) {
		stub := &eventDAOStub{event: storedEvent(), conflictsLeft: 100}
		repo := NewEventRepository(stub)

		_, err := repo.Transact(context.Background(), 1, appendParticipant(20))

		require.ErrorIs(t, err, ErrTransactConflict)
		assert.Equal(t, 5, stub.updateCalls)
	})

	t.Run("a business rejection aborts without retrying", func(t *testing.T) {
		stub := &eventDAOStub{event: storedEvent()}
		repo := NewEventRepository(stub)

		rejected := errors.New("no seats left")
		calls := 0

		_, err := repo.Transact(context.Background(), 1, func(event domain.Event) (domain.Event, error) {
			calls++
			return domain.Event{}, rejected
		})

		require.ErrorIs(t, err, rejected)
		assert.Equal(t, 1, calls)
		assert.Zero(t, stub.updateCalls)
	})

	t.Run("unknown event aborts without retrying", func(t *testing.T) {
		stub := &eventDAOStub{event: storedEvent()}
		repo := NewEventRepository(stub)

		_, err := repo.Transact(context.Background(), 404, appendParticipant(20))

		require.ErrorIs(t, err, ErrEventNotFound)
		assert.Equal(t, 1, stub.findCalls)
	})

	t.Run("each retry reads the freshest state", func(t *testing.T) {
		stub := &eventDAOStub{event: storedEvent(), conflictsLeft: 1}
		repo := NewEventRepository(stub)

		var seen [][]uint
		_, err := repo.Transact(context.Background(), 1, func(event domain.Event) (domain.Event, error) {
			seen = append(seen, event.Participants)
			event.Participants = append(event.Participants, 20)
			return event, nil
		})

		require.NoError(t, err)
		require.Len(t, seen, 2)
		assert.Equal(t, seen[0], seen[1])
		assert.Equal(t, 2, stub.findCalls)
	})

	t.Run("the transaction cannot clobber identity or the rating aggregate", func(t *testing.T) {
		initial := storedEvent()
		initial.AverageRating = 4.5
		initial.RatingCount = 2

		stub := &eventDAOStub{event: initial}
		repo := NewEventRepository(stub)

		_, err := repo.Transact(context.Background(), 1, func(event domain.Event) (domain.Event, error) {
			event.ID = 999
			event.OrganizerID = 999
			event.AverageRating = 1.0
			event.RatingCount = 50
			return event, nil
		})

		require.NoError(t, err)
		assert.Equal(t, uint(1), stub.event.ID)
		assert.Equal(t, uint(7), stub.event.OrganizerID)
		assert.InDelta(t, 4.5, stub.event.AverageRating, 0.0001)
		assert.Equal(t, 2, stub.event.RatingCount)
	})

	t.Run("a cancelled context stops the retry loop", func(t *testing.T) {
		stub := &eventDAOStub{event: storedEvent(), conflictsLeft: 100}
		repo := NewEventRepository(stub)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := repo.Transact(ctx, 1, appendParticipant(20))

		require.ErrorIs(t, err, context.Canceled)
		assert.LessOrEqual(t, stub.updateCalls, 1)
	})
}

func TestEventRepository_UpdateRating(t *testing.T) {
	stub := &eventDAOStub{event: storedEvent()}
	repo := NewEventRepository(stub)

	err := repo.UpdateRating(context.Background(), 1, 4.25, 4)

	require.NoError(t, err)
	assert.InDelta(t, 4.25, stub.event.AverageRating, 0.0001)
	assert.Equal(t, 4, stub.event.RatingCount)

	err = repo.UpdateRating(context.Background(), 404, 4.25, 4)
	require.ErrorIs(t, err, ErrEventNotFound)
}
