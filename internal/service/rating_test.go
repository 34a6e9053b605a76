package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvega-dev/community-events-api/internal/domain"
	"github.com/dvega-dev/community-events-api/internal/repository"
)

type memCommentRepository struct {
	comments map[uint]domain.Comment
	nextID   uint
}

func newMemCommentRepository(comments ...domain.Comment) *memCommentRepository {
	m := &memCommentRepository{
		comments: make(map[uint]domain.Comment),
		nextID:   1,
	}
	for _, c := range comments {
		m.comments[c.ID] = c
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
	}
	return m
}

func (m *memCommentRepository) Create(_ context.Context, comment domain.Comment) (domain.Comment, error) {
	for _, c := range m.comments {
		if c.EventID == comment.EventID && c.UserID == comment.UserID {
			return domain.Comment{}, repository.ErrCommentExists
		}
	}

	comment.ID = m.nextID
	m.nextID++
	m.comments[comment.ID] = comment

	return comment, nil
}

func (m *memCommentRepository) ListByEvent(_ context.Context, eventID uint) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, c := range m.comments {
		if c.EventID == eventID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *memCommentRepository) GetByID(_ context.Context, id uint) (domain.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return domain.Comment{}, repository.ErrCommentNotFound
	}
	return c, nil
}

func (m *memCommentRepository) Delete(_ context.Context, eventID, commentID uint) error {
	c, ok := m.comments[commentID]
	if !ok || c.EventID != eventID {
		return repository.ErrCommentNotFound
	}
	delete(m.comments, commentID)
	return nil
}

type ratingEventsStub struct {
	event domain.Event

	updateCalls int
	lastAverage float64
	lastCount   int
}

func (s *ratingEventsStub) GetByID(_ context.Context, id uint) (domain.Event, error) {
	if id != s.event.ID {
		return domain.Event{}, ErrEventNotFound
	}
	return s.event, nil
}

func (s *ratingEventsStub) UpdateRating(_ context.Context, _ uint, average float64, count int) error {
	s.updateCalls++
	s.lastAverage = average
	s.lastCount = count
	return nil
}

func pastEvent(participants ...uint) domain.Event {
	return domain.Event{
		ID:              1,
		ScheduledAt:     time.Now().Add(-24 * time.Hour),
		Participants:    participants,
		MaxParticipants: 10,
	}
}

func TestRatingService_AddComment(t *testing.T) {
	author := domain.User{ID: 10, Name: "Ada"}

	t.Run("records the comment and refreshes the aggregate", func(t *testing.T) {
		comments := newMemCommentRepository(
			domain.Comment{ID: 1, EventID: 1, UserID: 11, Rating: 5},
			domain.Comment{ID: 2, EventID: 1, UserID: 12, Rating: 3},
		)
		events := &ratingEventsStub{event: pastEvent(10, 11, 12)}
		svc := NewRatingService(comments, events)

		created, err := svc.AddComment(context.Background(), 1, author, "  great evening  ", 4)

		require.NoError(t, err)
		assert.Equal(t, "great evening", created.Body)
		assert.Equal(t, author.Name, created.UserName)
		assert.Equal(t, 1, events.updateCalls)
		assert.InDelta(t, 4.0, events.lastAverage, 0.0001)
		assert.Equal(t, 3, events.lastCount)
	})

	t.Run("rejects a second comment by the same user", func(t *testing.T) {
		comments := newMemCommentRepository(domain.Comment{ID: 1, EventID: 1, UserID: 10, Rating: 5})
		events := &ratingEventsStub{event: pastEvent(10)}
		svc := NewRatingService(comments, events)

		_, err := svc.AddComment(context.Background(), 1, author, "again", 4)

		require.ErrorIs(t, err, ErrCommentExists)
	})

	t.Run("validation failures never reach the store", func(t *testing.T) {
		tests := []struct {
			name    string
			body    string
			rating  int
			wantErr error
		}{
			{name: "blank body", body: "   ", rating: 4, wantErr: ErrBodyRequired},
			{name: "rating too low", body: "ok", rating: 0, wantErr: ErrRatingRange},
			{name: "rating too high", body: "ok", rating: 6, wantErr: ErrRatingRange},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				comments := newMemCommentRepository()
				events := &ratingEventsStub{event: pastEvent(10)}
				svc := NewRatingService(comments, events)

				_, err := svc.AddComment(context.Background(), 1, author, tt.body, tt.rating)

				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, comments.comments)
				assert.Zero(t, events.updateCalls)
			})
		}
	})

	t.Run("rejects commenting before the event has ended", func(t *testing.T) {
		events := &ratingEventsStub{event: domain.Event{
			ID:              1,
			ScheduledAt:     time.Now().Add(24 * time.Hour),
			Participants:    []uint{10},
			MaxParticipants: 10,
		}}
		svc := NewRatingService(newMemCommentRepository(), events)

		_, err := svc.AddComment(context.Background(), 1, author, "early", 4)

		require.ErrorIs(t, err, ErrEventNotEnded)
	})

	t.Run("rejects comments from non-participants", func(t *testing.T) {
		events := &ratingEventsStub{event: pastEvent(11, 12)}
		svc := NewRatingService(newMemCommentRepository(), events)

		_, err := svc.AddComment(context.Background(), 1, author, "outsider", 4)

		require.ErrorIs(t, err, ErrNotParticipant)
	})
}

func TestRatingService_DeleteComment(t *testing.T) {
	t.Run("removes the comment and refreshes the aggregate", func(t *testing.T) {
		comments := newMemCommentRepository(
			domain.Comment{ID: 1, EventID: 1, UserID: 10, Rating: 5},
			domain.Comment{ID: 2, EventID: 1, UserID: 11, Rating: 3},
			domain.Comment{ID: 3, EventID: 1, UserID: 12, Rating: 4},
		)
		events := &ratingEventsStub{event: pastEvent(10, 11, 12)}
		svc := NewRatingService(comments, events)

		err := svc.DeleteComment(context.Background(), 1, 2, 11)

		require.NoError(t, err)
		assert.Equal(t, 1, events.updateCalls)
		assert.InDelta(t, 4.5, events.lastAverage, 0.0001)
		assert.Equal(t, 2, events.lastCount)
	})

	t.Run("only the author may delete", func(t *testing.T) {
		comments := newMemCommentRepository(domain.Comment{ID: 1, EventID: 1, UserID: 10, Rating: 5})
		svc := NewRatingService(comments, &ratingEventsStub{event: pastEvent(10)})

		err := svc.DeleteComment(context.Background(), 1, 1, 99)

		require.ErrorIs(t, err, ErrNotCommentOwner)
		assert.Len(t, comments.comments, 1)
	})

	t.Run("unknown comment surfaces the not-found sentinel", func(t *testing.T) {
		svc := NewRatingService(newMemCommentRepository(), &ratingEventsStub{event: pastEvent(10)})

		err := svc.DeleteComment(context.Background(), 1, 404, 10)

		require.ErrorIs(t, err, ErrCommentNotFound)
	})

	t.Run("comment on a different event is not found", func(t *testing.T) {
		comments := newMemCommentRepository(domain.Comment{ID: 1, EventID: 2, UserID: 10, Rating: 5})
		svc := NewRatingService(comments, &ratingEventsStub{event: pastEvent(10)})

		err := svc.DeleteComment(context.Background(), 1, 1, 10)

		require.ErrorIs(t, err, ErrCommentNotFound)
	})
}

func TestRatingService_Recompute(t *testing.T) {
	t.Run("averages all ratings", func(t *testing.T) {
		comments := newMemCommentRepository(
			domain.Comment{ID: 1, EventID: 1, UserID: 10, Rating: 5},
			domain.Comment{ID: 2, EventID: 1, UserID: 11, Rating: 3},
			domain.Comment{ID: 3, EventID: 1, UserID: 12, Rating: 4},
		)
		events := &ratingEventsStub{event: pastEvent()}
		svc := NewRatingService(comments, events)

		err := svc.Recompute(context.Background(), 1)

		require.NoError(t, err)
		assert.InDelta(t, 4.0, events.lastAverage, 0.0001)
		assert.Equal(t, 3, events.lastCount)
	})

	t.Run("an empty comment set leaves the aggregate untouched", func(t *testing.T) {
		events := &ratingEventsStub{event: pastEvent()}
		svc := NewRatingService(newMemCommentRepository(), events)

		err := svc.Recompute(context.Background(), 1)

		require.NoError(t, err)
		assert.Zero(t, events.updateCalls)
	})
}
