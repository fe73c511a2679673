// Package auth holds the request identity and the ownership rules shared by services.
package auth

import (
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/google/uuid"
)

// Session is the identity resolved from the access token, once per request
type Session struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
}

// IsAdmin reports whether the session belongs to an administrator
func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// HasRole reports whether the session's role is one of roles
func (s Session) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// CanModify reports whether the session owns the resource or is an admin
func (s Session) CanModify(ownerID uuid.UUID) bool {
	return s.UserID == ownerID || s.IsAdmin()
}

// RequireOwnerOrAdmin returns denied unless the session may modify a resource owned by ownerID
func RequireOwnerOrAdmin(s Session, ownerID uuid.UUID, denied error) error {
	if !s.CanModify(ownerID) {
		return denied
	}
	return nil
}

// RequireRole returns denied unless the session has one of roles
func RequireRole(s Session, denied error, roles ...models.Role) error {
	if !s.HasRole(roles...) {
		return denied
	}
	return nil
}
