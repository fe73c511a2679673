package services

import (
	"context"
	"testing"
	"time"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/app/repositories/memory"
	"github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/alnet/mentorbridge/internal/pkg/email"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

type fixture struct {
	ctx       context.Context
	repos     *repositories.Repositories
	publisher *events.RecordingPublisher
	email     email.EmailService
	logger    zerolog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	return &fixture{
		ctx:       context.Background(),
		repos:     memory.NewRepositories(),
		publisher: &events.RecordingPublisher{},
		email:     email.NewEmailService(email.SMTPConfig{}, logger),
		logger:    logger,
	}
}

// user creates an active account with a profile and returns its session
func (f *fixture) user(t *testing.T, role models.Role, firstName string) appAuth.Session {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{
		ID:        uuid.New(),
		Email:     uuid.NewString()[:8] + "@example.com",
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p := &models.Profile{
		Role:      role,
		FirstName: firstName,
		LastName:  "Tester",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.repos.Users.CreateWithProfile(f.ctx, u, p))
	return appAuth.Session{UserID: u.ID, Email: u.Email, Role: role}
}

func firstPage() helpers.PageRequest {
	return helpers.NewPageRequest(1, 20)
}

func sessionOf(u dto.UserResponse) appAuth.Session {
	return appAuth.Session{UserID: u.ID, Email: u.Email, Role: u.Role}
}
