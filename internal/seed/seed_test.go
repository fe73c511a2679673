package seed

import (
	"context"
	"testing"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/repositories/memory"
	"github.com/alnet/mentorbridge/internal/config"
	"github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

func TestCreateDefaultDataSeedsAdminOnce(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	cfg := &config.Config{}
	cfg.Admin.Email = " Admin@MentorBridge.dev "
	cfg.Admin.Password = "changeme123"

	require.NoError(t, CreateDefaultData(ctx, cfg, repos, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, cfg, repos, zerolog.Nop()))

	admin, err := repos.Users.GetByEmail(ctx, "admin@mentorbridge.dev")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "changeme123"))

	counts, err := repos.Users.CountByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.RoleAdmin])
}

func TestCreateDefaultDataWithoutAdmin(t *testing.T) {
	repos := memory.NewRepositories()
	require.NoError(t, CreateDefaultData(context.Background(), &config.Config{}, repos, zerolog.Nop()))

	counts, err := repos.Users.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestCreateDefaultDataRequiresPassword(t *testing.T) {
	cfg := &config.Config{}
	cfg.Admin.Email = "admin@mentorbridge.dev"
	err := CreateDefaultData(context.Background(), cfg, memory.NewRepositories(), zerolog.Nop())
	assert.Error(t, err)
}
