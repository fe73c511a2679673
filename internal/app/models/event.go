package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a networking or alumni event with optional capacity
type Event struct {
	ID              uuid.UUID `json:"id" db:"id"`
	OrganizerID     uuid.UUID `json:"organizerId" db:"organizer_id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	Location        string    `json:"location" db:"location"`
	StartsAt        time.Time `json:"startsAt" db:"starts_at"`
	EndsAt          time.Time `json:"endsAt" db:"ends_at"`
	Capacity        *int      `json:"capacity,omitempty" db:"capacity"`
	RegisteredCount int       `json:"registeredCount" db:"registered_count"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// EventRegistration links a user to an event, unique per (event, user)
type EventRegistration struct {
	EventID   uuid.UUID `json:"eventId" db:"event_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
