package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvega-dev/community-events-api/internal/domain"
	"github.com/dvega-dev/community-events-api/internal/repository"
)

var (
	ErrTitleRequired         = errors.New("title must not be blank")
	ErrCategoryUnknown       = errors.New("category is not in the catalog")
	ErrCapacityInvalid       = errors.New("max participants must be a positive number")
	ErrScheduleRequired      = errors.New("scheduled time must be set")
	ErrNotOrganizer          = errors.New("only the organizer may modify this event")
	ErrCapacityBelowEnrolled = errors.New("max participants cannot drop below current enrollment")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id uint) (domain.Event, error)
	Delete(ctx context.Context, id uint) error
	Transact(ctx context.Context, eventID uint, f repository.TxFunc) (domain.Event, error)
}

// EventDraft carries the caller-editable fields of an event.
type EventDraft struct {
	Title           string
	Description     string
	Location        string
	Category        string
	ScheduledAt     time.Time
	MaxParticipants int
}

// Validate rejects a draft before any store interaction happens.
func (d EventDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if !domain.IsValidCategory(d.Category) {
		return ErrCategoryUnknown
	}
	if d.MaxParticipants <= 0 {
		return ErrCapacityInvalid
	}
	if d.ScheduledAt.IsZero() {
		return ErrScheduleRequired
	}

	return nil
}

type EventService struct {
	repo    EventRepository
	watcher *EventWatcher
}

func NewEventService(repo EventRepository, watcher *EventWatcher) *EventService {
	return &EventService{
		repo:    repo,
		watcher: watcher,
	}
}

// Create validates the draft, snapshots the organizer's display name and
// stores the event with an empty participant list.
func (s *EventService) Create(ctx context.Context, draft EventDraft, organizer domain.User) (domain.Event, error) {
	if err := draft.Validate(); err != nil {
		return domain.Event{}, err
	}

	event, err := s.repo.Create(ctx, domain.Event{
		Title:           strings.TrimSpace(draft.Title),
		Description:     strings.TrimSpace(draft.Description),
		Location:        strings.TrimSpace(draft.Location),
		Category:        draft.Category,
		ScheduledAt:     draft.ScheduledAt,
		OrganizerID:     organizer.ID,
		OrganizerName:   organizer.Name,
		MaxParticipants: draft.MaxParticipants,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.watcher.Publish(EventChange{Type: EventCreated, Event: event})

	return event, nil
}

func (s *EventService) Get(ctx context.Context, eventID, viewerID uint) (domain.Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	event.IsParticipant = event.HasParticipant(viewerID)

	return event, nil
}

// Update lets the organizer edit the event's attributes. The edit runs in
// the same transactional protocol as enrollment so a concurrent join cannot
// be lost, and capacity may not drop below the current participant count.
func (s *EventService) Update(ctx context.Context, eventID, userID uint, draft EventDraft) (domain.Event, error) {
	if err := draft.Validate(); err != nil {
		return domain.Event{}, err
	}

	event, err := s.repo.Transact(ctx, eventID, func(event domain.Event) (domain.Event, error) {
		if !event.IsOrganizer(userID) {
			return domain.Event{}, ErrNotOrganizer
		}
		if draft.MaxParticipants < len(event.Participants) {
			return domain.Event{}, ErrCapacityBelowEnrolled
		}

		event.Title = strings.TrimSpace(draft.Title)
		event.Description = strings.TrimSpace(draft.Description)
		event.Location = strings.TrimSpace(draft.Location)
		event.Category = draft.Category
		event.ScheduledAt = draft.ScheduledAt
		event.MaxParticipants = draft.MaxParticipants

		return event, nil
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Transact -> %w", err)
	}

	s.watcher.Publish(EventChange{Type: EventUpdated, Event: event})

	return event, nil
}

func (s *EventService) Delete(ctx context.Context, eventID, userID uint) error {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	if !event.IsOrganizer(userID) {
		return ErrNotOrganizer
	}

	if err = s.repo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.watcher.Publish(EventChange{Type: EventDeleted, Event: event})

	return nil
}
