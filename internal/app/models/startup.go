package models

import (
	"time"

	"github.com/google/uuid"
)

// Startup is an alumni or student venture listed after admin review
type Startup struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	OwnerID     uuid.UUID     `json:"ownerId" db:"owner_id"`
	Name        string        `json:"name" db:"name"`
	Tagline     string        `json:"tagline" db:"tagline"`
	Description string        `json:"description" db:"description"`
	Industry    string        `json:"industry" db:"industry"`
	Stage       string        `json:"stage" db:"stage"`
	Website     string        `json:"website" db:"website"`
	FundingGoal int64         `json:"fundingGoal" db:"funding_goal"`
	Status      StartupStatus `json:"status" db:"status"`
	ReviewNote  string        `json:"reviewNote,omitempty" db:"review_note"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}

// StartupFilter narrows startup listings
type StartupFilter struct {
	Status   StartupStatus
	Industry string
	Search   string
}
