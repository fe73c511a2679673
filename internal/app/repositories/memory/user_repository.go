package memory

import (
	"context"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// UserRepository keeps accounts in memory
type UserRepository struct {
	s *store
}

// CreateWithProfile stores the user and its profile together
func (r *UserRepository) CreateWithProfile(_ context.Context, user *models.User, profile *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emails[user.Email]; taken {
		return apperrors.ErrEmailAlreadyExists
	}
	r.s.users[user.ID] = cloneOf(user)
	r.s.emails[user.Email] = user.ID

	p := cloneOf(profile)
	p.UserID = user.ID
	if p.Skills == nil {
		p.Skills = []string{}
	}
	r.s.profiles[user.ID] = p
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneOf(u), nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneOf(r.s.users[id]), nil
}

// EmailExists checks if an email is taken
func (r *UserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.emails[email]
	return ok, nil
}

// UpdateLastLogin records a login time
func (r *UserRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// SetActive enables or disables an account
func (r *UserRepository) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// CountByRole counts users per role
func (r *UserRepository) CountByRole(_ context.Context) (map[models.Role]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[models.Role]int64)
	for _, u := range r.s.users {
		counts[u.Role]++
	}
	return counts, nil
}

// CountByActive counts active and inactive accounts
func (r *UserRepository) CountByActive(_ context.Context) (active, inactive int64, err error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.IsActive {
			active++
		} else {
			inactive++
		}
	}
	return active, inactive, nil
}

// CountCreatedBetween counts users registered within [from, to]
func (r *UserRepository) CountCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if inRange(u.CreatedAt, from, to) {
			n++
		}
	}
	return n, nil
}
