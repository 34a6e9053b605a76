package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvega-dev/community-events-api/internal/domain"
	"github.com/dvega-dev/community-events-api/internal/repository"
)

var (
	ErrEventNotFound    = repository.ErrEventNotFound
	ErrTransactConflict = repository.ErrTransactConflict
	ErrTransactTimeout  = repository.ErrTransactTimeout

	ErrAlreadyEnrolled = errors.New("user is already enrolled in this event")
	ErrEventFull       = errors.New("event is full")
)

type EnrollmentEventRepository interface {
	Transact(ctx context.Context, eventID uint, f repository.TxFunc) (domain.Event, error)
}

type EnrollmentService struct {
	repo    EnrollmentEventRepository
	watcher *EventWatcher
}

func NewEnrollmentService(repo EnrollmentEventRepository, watcher *EventWatcher) *EnrollmentService {
	return &EnrollmentService{
		repo:    repo,
		watcher: watcher,
	}
}

// Join enrolls userID into the event. Both checks run inside the
// transaction, against the freshest state: checking capacity before the
// transaction would let two concurrent joins both pass and overbook the
// event. Duplicate membership is checked first so a re-join of a full event
// reports ErrAlreadyEnrolled, not ErrEventFull.
func (s *EnrollmentService) Join(ctx context.Context, eventID, userID uint) (domain.Event, error) {
	event, err := s.repo.Transact(ctx, eventID, func(event domain.Event) (domain.Event, error) {
		if event.HasParticipant(userID) {
			return domain.Event{}, ErrAlreadyEnrolled
		}
		if event.IsFull() {
			return domain.Event{}, ErrEventFull
		}

		event.Participants = append(event.Participants, userID)

		return event, nil
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Transact -> %w", err)
	}

	s.watcher.Publish(EventChange{Type: EventUpdated, Event: event})

	return event, nil
}

// Leave withdraws userID from the event. Leaving an event the user never
// joined is a no-op success.
func (s *EnrollmentService) Leave(ctx context.Context, eventID, userID uint) (domain.Event, error) {
	changed := false
	event, err := s.repo.Transact(ctx, eventID, func(event domain.Event) (domain.Event, error) {
		// Reset on every attempt: a retried transaction must not inherit the
		// outcome of a stale snapshot.
		changed = false

		remaining := make([]uint, 0, len(event.Participants))
		for _, id := range event.Participants {
			if id == userID {
				changed = true
				continue
			}
			remaining = append(remaining, id)
		}
		event.Participants = remaining

		return event, nil
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Transact -> %w", err)
	}

	if changed {
		s.watcher.Publish(EventChange{Type: EventUpdated, Event: event})
	}

	return event, nil
}
