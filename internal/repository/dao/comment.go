package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentExists   = errors.New("user already commented on this event")
)

type Comment struct {
	ID       uint   `gorm:"primaryKey"`
	EventID  uint   `gorm:"not null;uniqueIndex:idx_comments_event_user"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_comments_event_user"`
	UserName string `gorm:"not null"`
	Body     string `gorm:"not null"`
	Rating   int    `gorm:"not null"`

	CreatedAt time.Time
}

type CommentDAO struct {
	db *gorm.DB
}

func NewCommentDAO(db *gorm.DB) *CommentDAO {
	return &CommentDAO{
		db: db,
	}
}

func (d *CommentDAO) Insert(ctx context.Context, comment Comment) (Comment, error) {
	result := d.db.WithContext(ctx).Create(&comment)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.ConstraintName, "idx_comments_event_user") {
			return Comment{}, ErrCommentExists
		}

		return Comment{}, result.Error
	}

	return comment, nil
}

func (d *CommentDAO) FindByEventID(ctx context.Context, eventID uint) ([]Comment, error) {
	var comments []Comment

	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&comments)
	if result.Error != nil {
		return nil, result.Error
	}

	return comments, nil
}

func (d *CommentDAO) FindByID(ctx context.Context, id uint) (Comment, error) {
	var comment Comment

	result := d.db.WithContext(ctx).First(&comment, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Comment{}, ErrCommentNotFound
		}

		return Comment{}, result.Error
	}

	return comment, nil
}

func (d *CommentDAO) Delete(ctx context.Context, eventID, commentID uint) error {
	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&Comment{}, commentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}

	return nil
}
