package domain

import "time"

// Categories is the fixed catalog an event must belong to.
var Categories = []string{
	"Sports", "Culture", "Education", "Music", "Art",
	"Food", "Technology", "Charity", "Environment", "Other",
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

type Event struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	ScheduledAt time.Time `json:"scheduled_at"`

	OrganizerID   uint   `json:"organizer_id"`
	OrganizerName string `json:"organizer_name"` // display name snapshot taken at creation

	Participants    []uint `json:"participants"`
	MaxParticipants int    `json:"max_participants"`

	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`

	// IsParticipant is computed per request for the authenticated user, never stored.
	IsParticipant bool `json:"is_participant"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Event) HasParticipant(userID uint) bool {
	for _, id := range e.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

func (e *Event) IsFull() bool {
	return len(e.Participants) >= e.MaxParticipants
}

func (e *Event) IsOrganizer(userID uint) bool {
	return e.OrganizerID == userID
}

// HasEnded reports whether the event's scheduled time has passed.
// Commenting and rating are only allowed on ended events.
func (e *Event) HasEnded(now time.Time) bool {
	return e.ScheduledAt.Before(now)
}
