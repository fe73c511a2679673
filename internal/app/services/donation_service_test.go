package services

import (
	"testing"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonations(t *testing.T) {
	f := newFixture(t)
	svc := NewDonationService(f.repos, f.logger)
	alice := f.user(t, models.RoleAlumni, "Alice")
	bob := f.user(t, models.RoleAlumni, "Bob")
	admin := f.user(t, models.RoleAdmin, "Admin")

	_, err := svc.Create(f.ctx, alice, &dto.CreateDonationRequest{Amount: 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidDonationAmount)

	first, err := svc.Create(f.ctx, alice, &dto.CreateDonationRequest{Amount: 5000, Purpose: "Scholarships"})
	require.NoError(t, err)
	assert.Equal(t, "USD", first.Currency)

	_, err = svc.Create(f.ctx, alice, &dto.CreateDonationRequest{Amount: 2500, Currency: "eur"})
	require.NoError(t, err)
	_, err = svc.Create(f.ctx, bob, &dto.CreateDonationRequest{Amount: 1000, Anonymous: true})
	require.NoError(t, err)

	mine, err := svc.Mine(f.ctx, bob, firstPage())
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.NotNil(t, mine.Items[0].Donor)

	_, err = svc.List(f.ctx, alice, firstPage())
	assert.ErrorIs(t, err, apperrors.ErrAdminRequired)

	all, err := svc.List(f.ctx, admin, firstPage())
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	for _, d := range all.Items {
		if d.Anonymous {
			assert.Nil(t, d.Donor)
		} else {
			require.NotNil(t, d.Donor)
			assert.Equal(t, "Alice", d.Donor.FirstName)
		}
	}

	summary, err := svc.Summary(f.ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), summary.TotalsByCurrency["USD"])
	assert.Equal(t, int64(2500), summary.TotalsByCurrency["EUR"])
	assert.Equal(t, int64(3), summary.DonationCount)
	assert.Equal(t, int64(2), summary.DonorCount)
}
