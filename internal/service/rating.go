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
	ErrCommentNotFound = repository.ErrCommentNotFound
	ErrCommentExists   = repository.ErrCommentExists

	ErrBodyRequired    = errors.New("comment must not be blank")
	ErrRatingRange     = errors.New("rating must be between 1 and 5")
	ErrEventNotEnded   = errors.New("event can only be rated after it has taken place")
	ErrNotParticipant  = errors.New("only participants can rate this event")
	ErrNotCommentOwner = errors.New("only the author may delete this comment")
)

type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	ListByEvent(ctx context.Context, eventID uint) ([]domain.Comment, error)
	GetByID(ctx context.Context, id uint) (domain.Comment, error)
	Delete(ctx context.Context, eventID, commentID uint) error
}

type RatingEventRepository interface {
	GetByID(ctx context.Context, id uint) (domain.Event, error)
	UpdateRating(ctx context.Context, eventID uint, average float64, count int) error
}

type RatingService struct {
	comments CommentRepository
	events   RatingEventRepository
	now      func() time.Time
}

func NewRatingService(comments CommentRepository, events RatingEventRepository) *RatingService {
	return &RatingService{
		comments: comments,
		events:   events,
		now:      time.Now,
	}
}

// AddComment records a participant's comment and rating for an event that
// has already taken place, then refreshes the event's rating aggregate.
// A user may comment at most once per event, enforced by the store.
func (s *RatingService) AddComment(ctx context.Context, eventID uint, author domain.User, body string, rating int) (domain.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return domain.Comment{}, ErrBodyRequired
	}
	if rating < 1 || rating > 5 {
		return domain.Comment{}, ErrRatingRange
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("s.events.GetByID -> %w", err)
	}
	if !event.HasEnded(s.now()) {
		return domain.Comment{}, ErrEventNotEnded
	}
	if !event.HasParticipant(author.ID) {
		return domain.Comment{}, ErrNotParticipant
	}

	created, err := s.comments.Create(ctx, domain.Comment{
		EventID:  eventID,
		UserID:   author.ID,
		UserName: author.Name,
		Body:     strings.TrimSpace(body),
		Rating:   rating,
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("s.comments.Create -> %w", err)
	}

	if err = s.Recompute(ctx, eventID); err != nil {
		return domain.Comment{}, fmt.Errorf("s.Recompute -> %w", err)
	}

	return created, nil
}

func (s *RatingService) ListComments(ctx context.Context, eventID uint) ([]domain.Comment, error) {
	comments, err := s.comments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.comments.ListByEvent -> %w", err)
	}

	return comments, nil
}

// DeleteComment removes the author's own comment and refreshes the aggregate.
func (s *RatingService) DeleteComment(ctx context.Context, eventID, commentID, userID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("s.comments.GetByID -> %w", err)
	}
	if comment.EventID != eventID {
		return ErrCommentNotFound
	}
	if comment.UserID != userID {
		return ErrNotCommentOwner
	}

	if err = s.comments.Delete(ctx, eventID, commentID); err != nil {
		return fmt.Errorf("s.comments.Delete -> %w", err)
	}

	if err = s.Recompute(ctx, eventID); err != nil {
		return fmt.Errorf("s.Recompute -> %w", err)
	}

	return nil
}

// Recompute rebuilds the event's average rating and rating count from its
// comments. An empty comment set leaves the stored aggregate untouched.
// The read-then-write pair is not version checked, so two overlapping
// recomputes can race; the aggregate is eventually consistent, not exact.
func (s *RatingService) Recompute(ctx context.Context, eventID uint) error {
	comments, err := s.comments.ListByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("s.comments.ListByEvent -> %w", err)
	}

	if len(comments) == 0 {
		return nil
	}

	sum := 0
	for _, c := range comments {
		sum += c.Rating
	}
	average := float64(sum) / float64(len(comments))

	if err = s.events.UpdateRating(ctx, eventID, average, len(comments)); err != nil {
		return fmt.Errorf("s.events.UpdateRating -> %w", err)
	}

	return nil
}
