// Package seed creates the data a fresh deployment needs before anyone can sign in
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/config"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/alnet/mentorbridge/internal/pkg/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CreateDefaultData ensures the configured administrator account exists.
// It is a no-op when no admin email is configured and safe to run on every start.
func CreateDefaultData(ctx context.Context, cfg *config.Config, repos *repositories.Repositories, lgr zerolog.Logger) error {
	email := validation.NormalizeEmail(cfg.Admin.Email)
	if email == "" {
		lgr.Info().Msg("No admin account configured, skipping seed")
		return nil
	}
	if cfg.Admin.Password == "" {
		return fmt.Errorf("admin password is required when admin email is set")
	}

	exists, err := repos.Users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		lgr.Debug().Str("email", email).Msg("Admin account already exists")
		return nil
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &models.Profile{
		UserID:    admin.ID,
		Role:      models.RoleAdmin,
		FirstName: "Platform",
		LastName:  "Admin",
		Skills:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = repos.Users.CreateWithProfile(ctx, admin, profile)
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		// Another instance won the race.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	lgr.Info().Str("email", email).Str("userID", admin.ID.String()).Msg("Admin account created")
	return nil
}
