package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvega-dev/community-events-api/internal/domain"
	"github.com/dvega-dev/community-events-api/internal/repository/dao"
)

var (
	ErrEventNotFound = dao.ErrEventNotFound

	// ErrTransactConflict surfaces after the retry budget is spent on
	// version conflicts. The caller may ask the user to retry manually.
	ErrTransactConflict = errors.New("event update conflicted too many times")

	// ErrTransactTimeout surfaces when a single attempt exceeds its wall-clock budget.
	ErrTransactTimeout = errors.New("event update attempt timed out")
)

const (
	transactMaxAttempts    = 5
	transactBaseBackoff    = 50 * time.Millisecond
	transactAttemptTimeout = 10 * time.Second
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	UpdateWithVersion(ctx context.Context, event dao.Event) (dao.Event, error)
	UpdateRating(ctx context.Context, eventID uint, average float64, count int) error
	Delete(ctx context.Context, id uint) error
	ListUpcoming(ctx context.Context, now time.Time) ([]dao.Event, error)
	ListPast(ctx context.Context, now time.Time) ([]dao.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]dao.Event, error)
}

// TxFunc inspects the current event state and either returns the next state
// or an error to abort the transaction. It must be pure: it can run several
// times when the conditional write loses a race.
type TxFunc func(event domain.Event) (domain.Event, error)

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		Category:        e.Category,
		ScheduledAt:     e.ScheduledAt,
		OrganizerID:     e.OrganizerID,
		OrganizerName:   e.OrganizerName,
		Participants:    e.Participants,
		MaxParticipants: e.MaxParticipants,
		AverageRating:   e.AverageRating,
		RatingCount:     e.RatingCount,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (r *EventRepository) daosToDomain(events []dao.Event) []domain.Event {
	result := make([]domain.Event, len(events))
	for i, e := range events {
		result[i] = r.daoToDomain(e)
	}
	return result
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, dao.Event{
		Title:           event.Title,
		Description:     event.Description,
		Location:        event.Location,
		Category:        event.Category,
		ScheduledAt:     event.ScheduledAt,
		OrganizerID:     event.OrganizerID,
		OrganizerName:   event.OrganizerName,
		Participants:    []uint{},
		MaxParticipants: event.MaxParticipants,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uint) (domain.Event, error) {
	event, err := r.dao.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(event), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		if errors.Is(err, dao.ErrEventNotFound) {
			return ErrEventNotFound
		}

		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

// Transact runs f against the freshest event state and commits the result
// with a version-checked write. Version conflicts are retried with backoff up
// to transactMaxAttempts; any other error from f or the store aborts
// immediately, so business rejections never burn the retry budget.
func (r *EventRepository) Transact(ctx context.Context, eventID uint, f TxFunc) (domain.Event, error) {
	var lastErr error
	for attempt := 0; attempt < transactMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return domain.Event{}, ctx.Err()
			case <-time.After(transactBaseBackoff << uint(attempt-1)):
			}
		}

		event, err := r.transactOnce(ctx, eventID, f)
		if err == nil {
			return event, nil
		}
		if errors.Is(err, dao.ErrVersionConflict) {
			lastErr = err
			continue
		}

		return domain.Event{}, err
	}

	return domain.Event{}, fmt.Errorf("%w -> %v", ErrTransactConflict, lastErr)
}

func (r *EventRepository) transactOnce(ctx context.Context, eventID uint, f TxFunc) (domain.Event, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, transactAttemptTimeout)
	defer cancel()

	current, err := r.dao.FindByID(attemptCtx, eventID)
	if err != nil {
		if errors.Is(err, dao.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return domain.Event{}, fmt.Errorf("%w -> %v", ErrTransactTimeout, err)
		}

		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	next, err := f(r.daoToDomain(current))
	if err != nil {
		return domain.Event{}, err
	}

	// Only caller-mutable fields are taken from f's result. Identity, version
	// and the rating aggregate stay as read, so f cannot clobber them.
	current.Title = next.Title
	current.Description = next.Description
	current.Location = next.Location
	current.Category = next.Category
	current.ScheduledAt = next.ScheduledAt
	current.Participants = next.Participants
	current.MaxParticipants = next.MaxParticipants

	saved, err := r.dao.UpdateWithVersion(attemptCtx, current)
	if err != nil {
		if errors.Is(err, dao.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return domain.Event{}, fmt.Errorf("%w -> %v", ErrTransactTimeout, err)
		}
		if errors.Is(err, dao.ErrVersionConflict) {
			return domain.Event{}, err
		}

		return domain.Event{}, fmt.Errorf("r.dao.UpdateWithVersion -> %w", err)
	}

	return r.daoToDomain(saved), nil
}

// UpdateRating bypasses the version check on purpose: the aggregate is a
// best-effort projection recomputed from comments, not part of the
// enrollment invariant.
func (r *EventRepository) UpdateRating(ctx context.Context, eventID uint, average float64, count int) error {
	if err := r.dao.UpdateRating(ctx, eventID, average, count); err != nil {
		if errors.Is(err, dao.ErrEventNotFound) {
			return ErrEventNotFound
		}

		return fmt.Errorf("r.dao.UpdateRating -> %w", err)
	}

	return nil
}

func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]domain.Event, error) {
	events, err := r.dao.ListUpcoming(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListUpcoming -> %w", err)
	}

	return r.daosToDomain(events), nil
}

func (r *EventRepository) ListPast(ctx context.Context, now time.Time) ([]domain.Event, error) {
	events, err := r.dao.ListPast(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListPast -> %w", err)
	}

	return r.daosToDomain(events), nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	events, err := r.dao.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByOrganizer -> %w", err)
	}

	return r.daosToDomain(events), nil
}
