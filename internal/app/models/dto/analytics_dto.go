package dto

import (
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
)

// DateRangeQuery binds from/to; both accept RFC3339 or YYYY-MM-DD
type DateRangeQuery struct {
	From string `form:"from" json:"from"`
	To   string `form:"to" json:"to"`
}

// DateRange is a resolved, inclusive UTC range
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// UserAnalytics counts users
type UserAnalytics struct {
	Total    int64                 `json:"total"`
	ByRole   map[models.Role]int64 `json:"byRole"`
	Active   int64                 `json:"active"`
	Inactive int64                 `json:"inactive"`
	NewUsers int64                 `json:"newUsers"`
}

// EngagementAnalytics summarizes messaging and connections in a range
type EngagementAnalytics struct {
	Messages            int64                             `json:"messages"`
	ConnectionsByStatus map[models.ConnectionStatus]int64 `json:"connectionsByStatus"`
	AcceptanceRate      float64                           `json:"acceptanceRate"`
	DailyMessages       []models.DailyCount               `json:"dailyMessages"`
}

// PlatformAnalytics totals the content features
type PlatformAnalytics struct {
	Jobs             int64            `json:"jobs"`
	OpenJobs         int64            `json:"openJobs"`
	Applications     int64            `json:"applications"`
	Startups         int64            `json:"startups"`
	ApprovedStartups int64            `json:"approvedStartups"`
	Events           int64            `json:"events"`
	UpcomingEvents   int64            `json:"upcomingEvents"`
	Donations        int64            `json:"donations"`
	DonationTotals   map[string]int64 `json:"donationTotals"`
}

// Dashboard combines every analytics section
type Dashboard struct {
	Users      UserAnalytics       `json:"users"`
	Engagement EngagementAnalytics `json:"engagement"`
	Platform   PlatformAnalytics   `json:"platform"`
}

// Report is a dashboard stamped with its range and generation time
type Report struct {
	Range       DateRange `json:"range"`
	GeneratedAt time.Time `json:"generatedAt"`
	Dashboard
}
