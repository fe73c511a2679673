package dto

import "github.com/alnet/mentorbridge/internal/app/models"

// CreateDonationRequest records a donation; Amount is in cents
type CreateDonationRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Currency  string `json:"currency" binding:"omitempty,currency"`
	Purpose   string `json:"purpose" binding:"max=200"`
	Message   string `json:"message" binding:"max=1000"`
	Anonymous bool   `json:"anonymous"`
}

// DonationResponse is a donation with the donor summary, omitted for anonymous gifts
type DonationResponse struct {
	models.Donation
	Donor *models.UserSummary `json:"donor,omitempty"`
}
