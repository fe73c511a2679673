package memory

import (
	"context"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/google/uuid"
)

// DonationRepository keeps donations in memory
type DonationRepository struct {
	s *store
}

// Create records a donation
func (r *DonationRepository) Create(_ context.Context, d *models.Donation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.donations = append(r.s.donations, cloneOf(d))
	return nil
}

// List pages through donations, newest first
func (r *DonationRepository) List(_ context.Context, donorID *uuid.UUID, offset, limit int) ([]*models.Donation, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := []*models.Donation{}
	for _, d := range r.s.donations {
		if donorID == nil || d.DonorID == *donorID {
			matches = append(matches, cloneOf(d))
		}
	}
	newestFirst(matches,
		func(d *models.Donation) time.Time { return d.CreatedAt },
		func(d *models.Donation) uuid.UUID { return d.ID })
	return page(matches, offset, limit), int64(len(matches)), nil
}

// Summary totals donations per currency
func (r *DonationRepository) Summary(_ context.Context) (*models.DonationSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	summary := &models.DonationSummary{TotalsByCurrency: make(map[string]int64)}
	donors := make(map[uuid.UUID]struct{})
	for _, d := range r.s.donations {
		summary.TotalsByCurrency[d.Currency] += d.Amount
		summary.DonationCount++
		donors[d.DonorID] = struct{}{}
	}
	summary.DonorCount = int64(len(donors))
	return summary, nil
}
