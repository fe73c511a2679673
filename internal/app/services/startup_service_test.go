package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startupRequest(name string) *dto.StartupRequest {
	return &dto.StartupRequest{Name: name, Description: "We do things", Industry: "Fintech", Stage: "seed"}
}

func TestStartupReviewFlow(t *testing.T) {
	f := newFixture(t)
	svc := NewStartupService(f.repos, f.publisher, f.logger)
	founder := f.user(t, models.RoleAlumni, "Founder")
	visitor := f.user(t, models.RoleStudent, "Visitor")
	admin := f.user(t, models.RoleAdmin, "Admin")

	created, err := svc.Create(f.ctx, founder, startupRequest("Ledgerly"))
	require.NoError(t, err)
	assert.Equal(t, models.StartupPending, created.Status)

	_, err = svc.Create(f.ctx, founder, startupRequest("Second"))
	assert.ErrorIs(t, err, apperrors.ErrStartupAlreadyExists)

	// Pending listings are hidden from other users.
	_, err = svc.Get(f.ctx, visitor, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrStartupNotFound)
	_, err = svc.Get(f.ctx, founder, created.ID)
	require.NoError(t, err)

	listed, err := svc.List(f.ctx, visitor, &dto.StartupListQuery{Status: "pending"}, firstPage())
	require.NoError(t, err)
	assert.Empty(t, listed.Items)

	_, err = svc.Approve(f.ctx, founder, created.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrAdminRequired)

	pending, err := svc.Pending(f.ctx, admin, firstPage())
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)

	approved, err := svc.Approve(f.ctx, admin, created.ID, "Looks good")
	require.NoError(t, err)
	assert.Equal(t, models.StartupApproved, approved.Status)
	assert.Equal(t, "Looks good", approved.ReviewNote)

	_, err = svc.Reject(f.ctx, admin, created.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrStartupNotPending)

	visible, err := svc.Get(f.ctx, visitor, created.ID)
	require.NoError(t, err)
	require.NotNil(t, visible.Founder)
	assert.Equal(t, "Founder", visible.Founder.FirstName)

	listed, err = svc.List(f.ctx, visitor, nil, firstPage())
	require.NoError(t, err)
	require.Len(t, listed.Items, 1)

	assert.Equal(t, []string{events.StartupReviewed}, f.publisher.Types())
}

func TestConcurrentReviewsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	svc := NewStartupService(f.repos, f.publisher, f.logger)
	founder := f.user(t, models.RoleAlumni, "Founder")
	admin := f.user(t, models.RoleAdmin, "Admin")

	created, err := svc.Create(f.ctx, founder, startupRequest("Racer"))
	require.NoError(t, err)

	const reviewers = 8
	errs := make([]error, reviewers)
	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = svc.Approve(f.ctx, admin, created.ID, "")
			} else {
				_, errs[i] = svc.Reject(f.ctx, admin, created.ID, "")
			}
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, apperrors.ErrStartupNotPending), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, []string{events.StartupReviewed}, f.publisher.Types())
}

func TestStartupOwnershipAndStatistics(t *testing.T) {
	f := newFixture(t)
	svc := NewStartupService(f.repos, f.publisher, f.logger)
	founder := f.user(t, models.RoleAlumni, "Founder")
	other := f.user(t, models.RoleAlumni, "Other")
	admin := f.user(t, models.RoleAdmin, "Admin")

	created, err := svc.Create(f.ctx, founder, startupRequest("Ledgerly"))
	require.NoError(t, err)
	second, err := svc.Create(f.ctx, other, startupRequest("Shipfast"))
	require.NoError(t, err)
	_, err = svc.Reject(f.ctx, admin, second.ID, "Not a fit")
	require.NoError(t, err)

	_, err = svc.Update(f.ctx, other, created.ID, startupRequest("Mine now"))
	assert.ErrorIs(t, err, apperrors.ErrNotStartupOwner)

	updated, err := svc.Update(f.ctx, founder, created.ID, startupRequest("Ledgerly Pro"))
	require.NoError(t, err)
	assert.Equal(t, "Ledgerly Pro", updated.Name)
	assert.Equal(t, models.StartupPending, updated.Status)

	mine, err := svc.MyStartup(f.ctx, founder)
	require.NoError(t, err)
	assert.Equal(t, created.ID, mine.ID)

	_, err = svc.Statistics(f.ctx, founder)
	assert.ErrorIs(t, err, apperrors.ErrAdminRequired)

	stats, err := svc.Statistics(f.ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[models.StartupPending])
	assert.Equal(t, int64(1), stats.ByStatus[models.StartupRejected])
	assert.Equal(t, int64(0), stats.ByStatus[models.StartupApproved])

	require.NoError(t, svc.Delete(f.ctx, admin, created.ID))
	_, err = svc.MyStartup(f.ctx, founder)
	assert.ErrorIs(t, err, apperrors.ErrStartupNotFound)
}
