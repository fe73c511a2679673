package memory

import (
	"context"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// StartupRepository keeps startups in memory
type StartupRepository struct {
	s *store
}

// Create stores a startup, one per owner
func (r *StartupRepository) Create(_ context.Context, startup *models.Startup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, st := range r.s.startups {
		if st.OwnerID == startup.OwnerID {
			return apperrors.ErrStartupAlreadyExists
		}
	}
	r.s.startups[startup.ID] = cloneOf(startup)
	return nil
}

// GetByID retrieves a startup
func (r *StartupRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Startup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.startups[id]
	if !ok {
		return nil, apperrors.ErrStartupNotFound
	}
	return cloneOf(st), nil
}

// GetByOwner retrieves the owner's startup
func (r *StartupRepository) GetByOwner(_ context.Context, ownerID uuid.UUID) (*models.Startup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, st := range r.s.startups {
		if st.OwnerID == ownerID {
			return cloneOf(st), nil
		}
	}
	return nil, apperrors.ErrStartupNotFound
}

// Update replaces the editable startup fields
func (r *StartupRepository) Update(_ context.Context, startup *models.Startup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.startups[startup.ID]
	if !ok {
		return apperrors.ErrStartupNotFound
	}
	c := cloneOf(startup)
	c.OwnerID = existing.OwnerID
	c.ReviewNote = existing.ReviewNote
	c.CreatedAt = existing.CreatedAt
	r.s.startups[startup.ID] = c
	return nil
}

// Delete removes a startup
func (r *StartupRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.startups[id]; !ok {
		return apperrors.ErrStartupNotFound
	}
	delete(r.s.startups, id)
	return nil
}

func matchesStartup(st *models.Startup, f models.StartupFilter) bool {
	if f.Status != "" && st.Status != f.Status {
		return false
	}
	if f.Industry != "" && !containsFold(st.Industry, f.Industry) {
		return false
	}
	if f.Search != "" && !containsFold(st.Name, f.Search) && !containsFold(st.Tagline, f.Search) && !containsFold(st.Description, f.Search) {
		return false
	}
	return true
}

// List pages through startups, newest first
func (r *StartupRepository) List(_ context.Context, f models.StartupFilter, offset, limit int) ([]*models.Startup, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := []*models.Startup{}
	for _, st := range r.s.startups {
		if matchesStartup(st, f) {
			matches = append(matches, cloneOf(st))
		}
	}
	newestFirst(matches,
		func(s *models.Startup) time.Time { return s.CreatedAt },
		func(s *models.Startup) uuid.UUID { return s.ID })
	return page(matches, offset, limit), int64(len(matches)), nil
}

// Review records a decision on a startup that is still pending
func (r *StartupRepository) Review(_ context.Context, id uuid.UUID, status models.StartupStatus, note string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st, ok := r.s.startups[id]
	if !ok {
		return apperrors.ErrStartupNotFound
	}
	if st.Status != models.StartupPending {
		return apperrors.ErrStartupNotPending
	}
	st.Status = status
	st.ReviewNote = note
	st.UpdatedAt = time.Now().UTC()
	return nil
}

// CountByStatus counts startups per review status
func (r *StartupRepository) CountByStatus(_ context.Context) (map[models.StartupStatus]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[models.StartupStatus]int64)
	for _, st := range r.s.startups {
		counts[st.Status]++
	}
	return counts, nil
}
