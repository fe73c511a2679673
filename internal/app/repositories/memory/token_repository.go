package memory

import (
	"context"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// TokenRepository keeps refresh tokens in memory
type TokenRepository struct {
	s *store
}

func (r *TokenRepository) insert(token string, userID uuid.UUID, expiryDate time.Time) error {
	if _, exists := r.s.tokens[token]; exists {
		return apperrors.ErrTokenInvalid
	}
	r.s.tokens[token] = &models.RefreshToken{
		Token:      token,
		UserID:     userID,
		ExpiryDate: expiryDate,
		CreatedAt:  time.Now().UTC(),
	}
	return nil
}

// CreateToken stores a new refresh token
func (r *TokenRepository) CreateToken(_ context.Context, token string, userID uuid.UUID, expiryDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(token, userID, expiryDate)
}

// GetToken retrieves a stored token
func (r *TokenRepository) GetToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return cloneOf(t), nil
}

// RotateToken revokes oldToken and stores newToken
func (r *TokenRepository) RotateToken(_ context.Context, oldToken, newToken string, userID uuid.UUID, expiryDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	old, ok := r.s.tokens[oldToken]
	if !ok || old.IsRevoked {
		return apperrors.ErrTokenRevoked
	}
	if err := r.insert(newToken, userID, expiryDate); err != nil {
		return err
	}
	old.IsRevoked = true
	return nil
}

// RevokeToken revokes one token
func (r *TokenRepository) RevokeToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.IsRevoked = true
	return nil
}

// RevokeAllUserTokens revokes every token of the user
func (r *TokenRepository) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	return nil
}
