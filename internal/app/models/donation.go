package models

import (
	"time"

	"github.com/google/uuid"
)

// Donation records a gift; Amount is in minor units (cents)
type Donation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DonorID   uuid.UUID `json:"donorId" db:"donor_id"`
	Amount    int64     `json:"amount" db:"amount"`
	Currency  string    `json:"currency" db:"currency"`
	Purpose   string    `json:"purpose" db:"purpose"`
	Message   string    `json:"message,omitempty" db:"message"`
	Anonymous bool      `json:"anonymous" db:"anonymous"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// DonationSummary totals donations per currency
type DonationSummary struct {
	TotalsByCurrency map[string]int64 `json:"totalsByCurrency"`
	DonationCount    int64            `json:"donationCount"`
	DonorCount       int64            `json:"donorCount"`
}
