package memory

import (
	"context"
	"sort"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// EventRepository keeps events and registrations in memory
type EventRepository struct {
	s *store
}

func (r *EventRepository) withCount(e *models.Event) *models.Event {
	c := cloneOf(e)
	if e.Capacity != nil {
		capacity := *e.Capacity
		c.Capacity = &capacity
	}
	c.RegisteredCount = len(r.s.registrations[e.ID])
	return c
}

// Create stores an event
func (r *EventRepository) Create(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.events[e.ID] = cloneOf(e)
	return nil
}

// GetByID retrieves an event with its registration count
func (r *EventRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return r.withCount(e), nil
}

// Update replaces the editable event fields
func (r *EventRepository) Update(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.events[e.ID]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	c := cloneOf(e)
	c.OrganizerID = existing.OrganizerID
	c.CreatedAt = existing.CreatedAt
	r.s.events[e.ID] = c
	return nil
}

// Delete removes an event and its registrations
func (r *EventRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(r.s.events, id)
	delete(r.s.registrations, id)
	return nil
}

func (r *EventRepository) filtered(endsAfter *time.Time) []*models.Event {
	out := []*models.Event{}
	for _, e := range r.s.events {
		if endsAfter == nil || e.EndsAt.After(*endsAfter) {
			out = append(out, r.withCount(e))
		}
	}
	return out
}

// List pages through events by start time
func (r *EventRepository) List(_ context.Context, endsAfter *time.Time, offset, limit int) ([]*models.Event, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	events := r.filtered(endsAfter)
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].StartsAt.Equal(events[j].StartsAt) {
			return events[i].StartsAt.Before(events[j].StartsAt)
		}
		return events[i].ID.String() < events[j].ID.String()
	})
	return page(events, offset, limit), int64(len(events)), nil
}

// Count counts events, optionally only those ending after endsAfter
func (r *EventRepository) Count(_ context.Context, endsAfter *time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.filtered(endsAfter))), nil
}

// Register adds a registration within the event's capacity
func (r *EventRepository) Register(_ context.Context, eventID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.events[eventID]
	if !ok {
		return apperrors.ErrEventNotFound
	}
	regs := r.s.registrations[eventID]
	if _, done := regs[userID]; done {
		return apperrors.ErrAlreadyRegistered
	}
	if e.Capacity != nil && len(regs) >= *e.Capacity {
		return apperrors.ErrEventFull
	}
	if regs == nil {
		regs = make(map[uuid.UUID]time.Time)
		r.s.registrations[eventID] = regs
	}
	regs[userID] = time.Now().UTC()
	return nil
}

// Unregister removes a registration
func (r *EventRepository) Unregister(_ context.Context, eventID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	regs := r.s.registrations[eventID]
	if _, ok := regs[userID]; !ok {
		return apperrors.ErrNotRegistered
	}
	delete(regs, userID)
	return nil
}

// RegisteredAmong reports which of eventIDs userID is registered for
func (r *EventRepository) RegisteredAmong(_ context.Context, userID uuid.UUID, eventIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[uuid.UUID]bool, len(eventIDs))
	for _, id := range eventIDs {
		if _, ok := r.s.registrations[id][userID]; ok {
			out[id] = true
		}
	}
	return out, nil
}
