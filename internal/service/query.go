package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dvega-dev/community-events-api/internal/domain"
)

type QueryEventRepository interface {
	ListUpcoming(ctx context.Context, now time.Time) ([]domain.Event, error)
	ListPast(ctx context.Context, now time.Time) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error)
}

// EventQueryService serves the read-only event projections. Results are
// snapshots; callers wanting push-on-change updates use Watch.
type EventQueryService struct {
	repo    QueryEventRepository
	watcher *EventWatcher
	now     func() time.Time
}

func NewEventQueryService(repo QueryEventRepository, watcher *EventWatcher) *EventQueryService {
	return &EventQueryService{
		repo:    repo,
		watcher: watcher,
		now:     time.Now,
	}
}

// Upcoming returns events that have not started yet, soonest first.
func (s *EventQueryService) Upcoming(ctx context.Context, viewerID uint) ([]domain.Event, error) {
	events, err := s.repo.ListUpcoming(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListUpcoming -> %w", err)
	}

	return s.markParticipation(events, viewerID), nil
}

// Past returns events whose scheduled time has passed, most recent first.
func (s *EventQueryService) Past(ctx context.Context, viewerID uint) ([]domain.Event, error) {
	events, err := s.repo.ListPast(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListPast -> %w", err)
	}

	return s.markParticipation(events, viewerID), nil
}

// Mine returns the events the user organizes.
func (s *EventQueryService) Mine(ctx context.Context, userID uint) ([]domain.Event, error) {
	events, err := s.repo.ListByOrganizer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByOrganizer -> %w", err)
	}

	return s.markParticipation(events, userID), nil
}

// Watch opens a live subscription to event changes. The caller must Close
// the returned subscription when done with it.
func (s *EventQueryService) Watch() *Subscription {
	return s.watcher.Subscribe()
}

func (s *EventQueryService) markParticipation(events []domain.Event, viewerID uint) []domain.Event {
	for i := range events {
		events[i].IsParticipant = events[i].HasParticipant(viewerID)
	}
	return events
}
