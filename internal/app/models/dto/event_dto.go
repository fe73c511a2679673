package dto

import (
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
)

// EventRequest creates or replaces an event
type EventRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"max=10000"`
	Location    string    `json:"location" binding:"max=300"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required,gtfield=StartsAt"`
	Capacity    *int      `json:"capacity" binding:"omitempty,min=1"`
}

// Apply copies the request onto e
func (r *EventRequest) Apply(e *models.Event) {
	e.Title = r.Title
	e.Description = r.Description
	e.Location = r.Location
	e.StartsAt = r.StartsAt.UTC()
	e.EndsAt = r.EndsAt.UTC()
	e.Capacity = r.Capacity
}

// EventResponse is an event with the caller's registration state
type EventResponse struct {
	models.Event
	IsRegistered bool `json:"isRegistered"`
}
