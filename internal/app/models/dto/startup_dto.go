package dto

import "github.com/alnet/mentorbridge/internal/app/models"

// StartupRequest creates or replaces a startup listing
type StartupRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Tagline     string `json:"tagline" binding:"max=300"`
	Description string `json:"description" binding:"required,max=10000"`
	Industry    string `json:"industry" binding:"max=100"`
	Stage       string `json:"stage" binding:"omitempty,oneof=idea mvp seed series_a growth"`
	Website     string `json:"website" binding:"omitempty,url"`
	FundingGoal int64  `json:"fundingGoal" binding:"min=0"`
}

// Apply copies the request onto s
func (r *StartupRequest) Apply(s *models.Startup) {
	s.Name = r.Name
	s.Tagline = r.Tagline
	s.Description = r.Description
	s.Industry = r.Industry
	s.Stage = r.Stage
	s.Website = r.Website
	s.FundingGoal = r.FundingGoal
}

// StartupListQuery binds startup listing filters
type StartupListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	Industry string `form:"industry"`
	Search   string `form:"search"`
}

// ReviewStartupRequest carries an optional reviewer note
type ReviewStartupRequest struct {
	Note string `json:"note" binding:"max=2000"`
}

// StartupResponse is a startup with its founder summary
type StartupResponse struct {
	models.Startup
	Founder *models.UserSummary `json:"founder,omitempty"`
}

// StartupStatistics counts startups by review status
type StartupStatistics struct {
	Total    int64                          `json:"total"`
	ByStatus map[models.StartupStatus]int64 `json:"byStatus"`
}
