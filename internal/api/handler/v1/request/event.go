package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// ScheduledAtLayout is the wire format for event times.
const ScheduledAtLayout = "02/01/2006 15:04"

type CreateEventRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	Category        string `json:"category" binding:"required"`
	ScheduledAt     string `json:"scheduled_at" binding:"required" format:"DD/MM/YYYY hh:mm"`
	MaxParticipants int    `json:"max_participants" binding:"required,min=1"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.Location, validation.Length(0, 100)),
		validation.Field(&req.Category, validation.Required),
		validation.Field(&req.ScheduledAt, validation.Required, validation.Date(ScheduledAtLayout)),
		validation.Field(&req.MaxParticipants, validation.Required, validation.Min(1)),
	)
}

type UpdateEventRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	Category        string `json:"category" binding:"required"`
	ScheduledAt     string `json:"scheduled_at" binding:"required" format:"DD/MM/YYYY hh:mm"`
	MaxParticipants int    `json:"max_participants" binding:"required,min=1"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.Location, validation.Length(0, 100)),
		validation.Field(&req.Category, validation.Required),
		validation.Field(&req.ScheduledAt, validation.Required, validation.Date(ScheduledAtLayout)),
		validation.Field(&req.MaxParticipants, validation.Required, validation.Min(1)),
	)
}

type CreateCommentRequest struct {
	Body   string `json:"body" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

func (req *CreateCommentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Body, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.Rating, validation.Required, validation.Min(1), validation.Max(5)),
	)
}
