package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateEventRequest() CreateEventRequest {
	return CreateEventRequest{
		Title:           "Neighborhood Cleanup",
		Description:     "Bring gloves",
		Location:        "Riverside Park",
		Category:        "Environment",
		ScheduledAt:     "12/09/2026 10:00",
		MaxParticipants: 20,
	}
}

func TestCreateEventRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *CreateEventRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *CreateEventRequest) {}},
		{name: "missing title", mutate: func(r *CreateEventRequest) { r.Title = "" }, wantErr: true},
		{name: "title too short", mutate: func(r *CreateEventRequest) { r.Title = "x" }, wantErr: true},
		{name: "missing category", mutate: func(r *CreateEventRequest) { r.Category = "" }, wantErr: true},
		{name: "wrong date format", mutate: func(r *CreateEventRequest) { r.ScheduledAt = "2026-09-12T10:00:00Z" }, wantErr: true},
		{name: "impossible date", mutate: func(r *CreateEventRequest) { r.ScheduledAt = "32/13/2026 10:00" }, wantErr: true},
		{name: "zero capacity", mutate: func(r *CreateEventRequest) { r.MaxParticipants = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateEventRequest()
			tt.mutate(&req)

			err := req.Validate()

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreateCommentRequest_Validate(t *testing.T) {
	valid := CreateCommentRequest{Body: "great evening", Rating: 4}
	assert.NoError(t, valid.Validate())

	missing := CreateCommentRequest{Rating: 4}
	assert.Error(t, missing.Validate())

	low := CreateCommentRequest{Body: "meh", Rating: 0}
	assert.Error(t, low.Validate())

	high := CreateCommentRequest{Body: "wow", Rating: 6}
	assert.Error(t, high.Validate())
}

func TestSignupRequest_Validate(t *testing.T) {
	valid := SignupRequest{Email: "ada@example.com", Password: "hunter22", Name: "Ada"}
	assert.NoError(t, valid.Validate())

	badEmail := SignupRequest{Email: "not-an-email", Password: "hunter22", Name: "Ada"}
	assert.Error(t, badEmail.Validate())

	shortPassword := SignupRequest{Email: "ada@example.com", Password: "abc", Name: "Ada"}
	assert.Error(t, shortPassword.Validate())
}

func TestLoginRequest_Validate(t *testing.T) {
	valid := LoginRequest{Email: "ada@example.com", Password: "hunter22"}
	assert.NoError(t, valid.Validate())

	missingPassword := LoginRequest{Email: "ada@example.com"}
	assert.Error(t, missingPassword.Validate())
}
