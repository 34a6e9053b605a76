package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("event not found")

	// ErrVersionConflict means a concurrent writer committed between our read
	// and our conditional write. The caller owns the retry policy.
	ErrVersionConflict = errors.New("event was modified concurrently")
)

type Event struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Location    string
	Category    string    `gorm:"not null;index"`
	ScheduledAt time.Time `gorm:"not null;index"`

	OrganizerID   uint   `gorm:"not null;index"`
	OrganizerName string `gorm:"not null"`

	Participants    []uint `gorm:"type:jsonb;serializer:json"`
	MaxParticipants int    `gorm:"not null"`

	AverageRating float64 `gorm:"default:0"`
	RatingCount   int     `gorm:"default:0"`

	// Version is the optimistic-concurrency column checked by UpdateWithVersion.
	Version uint `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// UpdateWithVersion writes event back only if no concurrent writer bumped the
// version since the caller read it. The matched row gets version+1; zero rows
// matched means the snapshot is stale and ErrVersionConflict is returned.
func (d *EventDAO) UpdateWithVersion(ctx context.Context, event Event) (Event, error) {
	readVersion := event.Version
	event.Version = readVersion + 1

	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND version = ?", event.ID, readVersion).
		Select("title", "description", "location", "category", "scheduled_at",
			"participants", "max_participants", "version", "updated_at").
		Updates(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish "gone" from "raced" so business callers see NotFound.
		var count int64
		if err := d.db.WithContext(ctx).Model(&Event{}).Where("id = ?", event.ID).Count(&count).Error; err != nil {
			return Event{}, err
		}
		if count == 0 {
			return Event{}, ErrEventNotFound
		}

		return Event{}, ErrVersionConflict
	}

	return event, nil
}

// UpdateRating is a plain column update, deliberately outside the version
// check. The aggregate is best effort and must not invalidate enrollment
// snapshots held by concurrent transactions.
func (d *EventDAO) UpdateRating(ctx context.Context, eventID uint, average float64, count int) error {
	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"rating_count":   count,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Event{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (d *EventDAO) ListUpcoming(ctx context.Context, now time.Time) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("scheduled_at >= ?", now).
		Order("scheduled_at ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) ListPast(ctx context.Context, now time.Time) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("scheduled_at < ?", now).
		Order("scheduled_at DESC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) ListByOrganizer(ctx context.Context, organizerID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("scheduled_at ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}
