package domain

import "time"

type Comment struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"event_id"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"` // display name snapshot taken at creation
	Body      string    `json:"body"`
	Rating    int       `json:"rating"` // 1 to 5
	CreatedAt time.Time `json:"created_at"`
}
