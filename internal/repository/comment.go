package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvega-dev/community-events-api/internal/domain"
	"github.com/dvega-dev/community-events-api/internal/repository/dao"
)

var (
	ErrCommentNotFound = dao.ErrCommentNotFound
	ErrCommentExists   = dao.ErrCommentExists
)

type CommentDAO interface {
	Insert(ctx context.Context, comment dao.Comment) (dao.Comment, error)
	FindByEventID(ctx context.Context, eventID uint) ([]dao.Comment, error)
	FindByID(ctx context.Context, id uint) (dao.Comment, error)
	Delete(ctx context.Context, eventID, commentID uint) error
}

type CommentRepository struct {
	dao CommentDAO
}

func NewCommentRepository(dao CommentDAO) *CommentRepository {
	return &CommentRepository{
		dao: dao,
	}
}

func (r *CommentRepository) daoToDomain(c dao.Comment) domain.Comment {
	return domain.Comment{
		ID:        c.ID,
		EventID:   c.EventID,
		UserID:    c.UserID,
		UserName:  c.UserName,
		Body:      c.Body,
		Rating:    c.Rating,
		CreatedAt: c.CreatedAt,
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	created, err := r.dao.Insert(ctx, dao.Comment{
		EventID:  comment.EventID,
		UserID:   comment.UserID,
		UserName: comment.UserName,
		Body:     comment.Body,
		Rating:   comment.Rating,
	})
	if err != nil {
		if errors.Is(err, dao.ErrCommentExists) {
			return domain.Comment{}, ErrCommentExists
		}

		return domain.Comment{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

// ListByEvent returns an event's comments, newest first.
func (r *CommentRepository) ListByEvent(ctx context.Context, eventID uint) ([]domain.Comment, error) {
	comments, err := r.dao.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	result := make([]domain.Comment, len(comments))
	for i, c := range comments {
		result[i] = r.daoToDomain(c)
	}

	return result, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uint) (domain.Comment, error) {
	comment, err := r.dao.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrCommentNotFound) {
			return domain.Comment{}, ErrCommentNotFound
		}

		return domain.Comment{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(comment), nil
}

func (r *CommentRepository) Delete(ctx context.Context, eventID, commentID uint) error {
	if err := r.dao.Delete(ctx, eventID, commentID); err != nil {
		if errors.Is(err, dao.ErrCommentNotFound) {
			return ErrCommentNotFound
		}

		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}
