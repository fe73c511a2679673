package memory

import (
	"context"
	"sort"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// ConnectionRepository keeps connections in memory
type ConnectionRepository struct {
	s *store
}

func (r *ConnectionRepository) activeBetween(a, b uuid.UUID, except uuid.UUID) *models.Connection {
	for _, c := range r.s.connections {
		if c.ID != except && c.Status.Active() && c.Involves(a) && c.Involves(b) {
			return c
		}
	}
	return nil
}

// Create stores a connection unless the pair already has an active one
func (r *ConnectionRepository) Create(_ context.Context, conn *models.Connection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[conn.RequesterID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if _, ok := r.s.users[conn.ReceiverID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if conn.Status.Active() && r.activeBetween(conn.RequesterID, conn.ReceiverID, uuid.Nil) != nil {
		return apperrors.ErrConnectionExists
	}
	r.s.connections[conn.ID] = cloneOf(conn)
	return nil
}

// GetByID retrieves a connection
func (r *ConnectionRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.connections[id]
	if !ok {
		return nil, apperrors.ErrConnectionNotFound
	}
	return cloneOf(c), nil
}

// FindActiveBetween returns the pair's active connection
func (r *ConnectionRepository) FindActiveBetween(_ context.Context, a, b uuid.UUID) (*models.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if c := r.activeBetween(a, b, uuid.Nil); c != nil {
		return cloneOf(c), nil
	}
	return nil, apperrors.ErrConnectionNotFound
}

// FindLatestBetween returns the pair's most recently updated connection
func (r *ConnectionRepository) FindLatestBetween(_ context.Context, a, b uuid.UUID) (*models.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *models.Connection
	for _, c := range r.s.connections {
		if !c.Involves(a) || !c.Involves(b) {
			continue
		}
		if latest == nil || c.UpdatedAt.After(latest.UpdatedAt) ||
			(c.UpdatedAt.Equal(latest.UpdatedAt) && c.ID.String() > latest.ID.String()) {
			latest = c
		}
	}
	if latest == nil {
		return nil, apperrors.ErrConnectionNotFound
	}
	return cloneOf(latest), nil
}

// TransitionStatus moves the connection to `to` when its status is one of from
func (r *ConnectionRepository) TransitionStatus(_ context.Context, id uuid.UUID, from []models.ConnectionStatus, to models.ConnectionStatus) (*models.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.connections[id]
	if !ok {
		return nil, apperrors.ErrConnectionNotFound
	}
	allowed := false
	for _, s := range from {
		if c.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.ErrConnectionStatusChanged
	}
	if to.Active() && r.activeBetween(c.RequesterID, c.ReceiverID, c.ID) != nil {
		return nil, apperrors.ErrConnectionExists
	}
	c.Status = to
	c.UpdatedAt = time.Now().UTC()
	return cloneOf(c), nil
}

// ListForUser pages through a user's connections in one status
func (r *ConnectionRepository) ListForUser(_ context.Context, userID uuid.UUID, status models.ConnectionStatus, direction models.ConnectionDirection, offset, limit int) ([]*models.Connection, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := []*models.Connection{}
	for _, c := range r.s.connections {
		if c.Status != status {
			continue
		}
		switch direction {
		case models.DirectionIncoming:
			if c.ReceiverID != userID {
				continue
			}
		case models.DirectionOutgoing:
			if c.RequesterID != userID {
				continue
			}
		default:
			if !c.Involves(userID) {
				continue
			}
		}
		matches = append(matches, cloneOf(c))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].UpdatedAt.Equal(matches[j].UpdatedAt) {
			return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
		}
		return matches[i].ID.String() > matches[j].ID.String()
	})
	return page(matches, offset, limit), int64(len(matches)), nil
}

// CountByStatus counts connections created within [from, to] per status
func (r *ConnectionRepository) CountByStatus(_ context.Context, from, to time.Time) (map[models.ConnectionStatus]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[models.ConnectionStatus]int64)
	for _, c := range r.s.connections {
		if inRange(c.CreatedAt, from, to) {
			counts[c.Status]++
		}
	}
	return counts, nil
}
