package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// AnalyticsService aggregates platform metrics for administrators
type AnalyticsService interface {
	ResolveRange(query *dto.DateRangeQuery) (dto.DateRange, error)
	Users(ctx context.Context, r dto.DateRange) (*dto.UserAnalytics, error)
	Engagement(ctx context.Context, r dto.DateRange) (*dto.EngagementAnalytics, error)
	Platform(ctx context.Context) (*dto.PlatformAnalytics, error)
	Dashboard(ctx context.Context, r dto.DateRange) (*dto.Dashboard, error)
	Report(ctx context.Context, r dto.DateRange) (*dto.Report, error)
	// ExportCSV renders the report as CSV and suggests a file name
	ExportCSV(ctx context.Context, r dto.DateRange) ([]byte, string, error)
}

type analyticsServiceImpl struct {
	repos  *repositories.Repositories
	logger zerolog.Logger
	now    clock
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(repos *repositories.Repositories, logger zerolog.Logger) AnalyticsService {
	return &analyticsServiceImpl{repos: repos, logger: logger, now: utcNow}
}

// ResolveRange parses from/to, defaulting to the trailing analytics window
func (s *analyticsServiceImpl) ResolveRange(query *dto.DateRangeQuery) (dto.DateRange, error) {
	var from, to string
	if query != nil {
		from, to = query.From, query.To
	}

	start, end, err := helpers.ParseDateRange(from, to, s.now())
	if err != nil {
		return dto.DateRange{}, apperrors.NewValidationError("from and to must be RFC3339 timestamps or YYYY-MM-DD dates").
			WithDetails(map[string]interface{}{"from": from, "to": to})
	}
	if start.After(end) {
		return dto.DateRange{}, apperrors.ErrInvalidDateRange
	}
	return dto.DateRange{From: start, To: end}, nil
}

func (s *analyticsServiceImpl) Users(ctx context.Context, r dto.DateRange) (*dto.UserAnalytics, error) {
	byRole, err := s.repos.Users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	active, inactive, err := s.repos.Users.CountByActive(ctx)
	if err != nil {
		return nil, err
	}
	newUsers, err := s.repos.Users.CountCreatedBetween(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}

	result := &dto.UserAnalytics{
		ByRole: map[models.Role]int64{
			models.RoleStudent: 0,
			models.RoleAlumni:  0,
			models.RoleAdmin:   0,
		},
		Active:   active,
		Inactive: inactive,
		NewUsers: newUsers,
	}
	for role, n := range byRole {
		result.ByRole[role] = n
		result.Total += n
	}
	return result, nil
}

// Engagement reports messaging and connection activity. Every day of the range
// appears in DailyMessages, zero-filled.
func (s *analyticsServiceImpl) Engagement(ctx context.Context, r dto.DateRange) (*dto.EngagementAnalytics, error) {
	messages, err := s.repos.Messages.CountBetween(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repos.Connections.CountByStatus(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}
	volume, err := s.repos.Messages.DailyVolume(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}

	connections := map[models.ConnectionStatus]int64{
		models.ConnectionPending:  0,
		models.ConnectionAccepted: 0,
		models.ConnectionRejected: 0,
		models.ConnectionBlocked:  0,
	}
	for status, n := range byStatus {
		connections[status] = n
	}

	return &dto.EngagementAnalytics{
		Messages:            messages,
		ConnectionsByStatus: connections,
		AcceptanceRate:      acceptanceRate(connections),
		DailyMessages:       zeroFillDays(volume, r.From, r.To),
	}, nil
}

// acceptanceRate is accepted/(accepted+rejected+pending), or 0 without decided or pending requests
func acceptanceRate(byStatus map[models.ConnectionStatus]int64) float64 {
	accepted := byStatus[models.ConnectionAccepted]
	denominator := accepted + byStatus[models.ConnectionRejected] + byStatus[models.ConnectionPending]
	if denominator == 0 {
		return 0
	}
	return float64(accepted) / float64(denominator)
}

func zeroFillDays(counts []models.DailyCount, from, to time.Time) []models.DailyCount {
	byDay := make(map[time.Time]int64, len(counts))
	for _, c := range counts {
		byDay[helpers.TruncateDay(c.Day)] += c.Count
	}

	days := helpers.DaysBetween(from, to)
	filled := make([]models.DailyCount, 0, len(days))
	for _, d := range days {
		filled = append(filled, models.DailyCount{Day: d, Count: byDay[d]})
	}
	return filled
}

func (s *analyticsServiceImpl) Platform(ctx context.Context) (*dto.PlatformAnalytics, error) {
	jobs, err := s.repos.Jobs.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	startups, err := s.repos.Startups.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totalEvents, err := s.repos.Events.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	now := s.now()
	upcoming, err := s.repos.Events.Count(ctx, &now)
	if err != nil {
		return nil, err
	}
	donations, err := s.repos.Donations.Summary(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.PlatformAnalytics{
		Jobs:             jobs.Total,
		OpenJobs:         jobs.ByStatus[models.JobOpen],
		Applications:     jobs.TotalApplications,
		ApprovedStartups: startups[models.StartupApproved],
		Events:           totalEvents,
		UpcomingEvents:   upcoming,
		Donations:        donations.DonationCount,
		DonationTotals:   donations.TotalsByCurrency,
	}
	for _, n := range startups {
		result.Startups += n
	}
	if result.DonationTotals == nil {
		result.DonationTotals = map[string]int64{}
	}
	return result, nil
}

func (s *analyticsServiceImpl) Dashboard(ctx context.Context, r dto.DateRange) (*dto.Dashboard, error) {
	users, err := s.Users(ctx, r)
	if err != nil {
		return nil, err
	}
	engagement, err := s.Engagement(ctx, r)
	if err != nil {
		return nil, err
	}
	platform, err := s.Platform(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.Dashboard{Users: *users, Engagement: *engagement, Platform: *platform}, nil
}

func (s *analyticsServiceImpl) Report(ctx context.Context, r dto.DateRange) (*dto.Report, error) {
	dashboard, err := s.Dashboard(ctx, r)
	if err != nil {
		return nil, err
	}
	return &dto.Report{Range: r, GeneratedAt: s.now(), Dashboard: *dashboard}, nil
}

func (s *analyticsServiceImpl) ExportCSV(ctx context.Context, r dto.DateRange) ([]byte, string, error) {
	report, err := s.Report(ctx, r)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{{"section", "metric", "value"}}
	add := func(section, metric string, value int64) {
		rows = append(rows, []string{section, metric, strconv.FormatInt(value, 10)})
	}

	rows = append(rows,
		[]string{"range", "from", report.Range.From.Format(time.RFC3339)},
		[]string{"range", "to", report.Range.To.Format(time.RFC3339)},
		[]string{"range", "generatedAt", report.GeneratedAt.Format(time.RFC3339)},
	)

	add("users", "total", report.Users.Total)
	for _, role := range sortedKeys(report.Users.ByRole) {
		add("users", "role:"+string(role), report.Users.ByRole[role])
	}
	add("users", "active", report.Users.Active)
	add("users", "inactive", report.Users.Inactive)
	add("users", "new", report.Users.NewUsers)

	add("engagement", "messages", report.Engagement.Messages)
	for _, status := range sortedKeys(report.Engagement.ConnectionsByStatus) {
		add("engagement", "connections:"+string(status), report.Engagement.ConnectionsByStatus[status])
	}
	rows = append(rows, []string{"engagement", "acceptanceRate", strconv.FormatFloat(report.Engagement.AcceptanceRate, 'f', 4, 64)})
	for _, d := range report.Engagement.DailyMessages {
		add("messages_by_day", d.Day.Format("2006-01-02"), d.Count)
	}

	add("platform", "jobs", report.Platform.Jobs)
	add("platform", "openJobs", report.Platform.OpenJobs)
	add("platform", "applications", report.Platform.Applications)
	add("platform", "startups", report.Platform.Startups)
	add("platform", "approvedStartups", report.Platform.ApprovedStartups)
	add("platform", "events", report.Platform.Events)
	add("platform", "upcomingEvents", report.Platform.UpcomingEvents)
	add("platform", "donations", report.Platform.Donations)
	for _, currency := range sortedKeys(report.Platform.DonationTotals) {
		add("donations", "total:"+currency, report.Platform.DonationTotals[currency])
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, "", fmt.Errorf("error writing analytics csv: %w", err)
	}

	filename := fmt.Sprintf("analytics_%s_%s.csv", report.Range.From.Format("20060102"), report.Range.To.Format("20060102"))
	return buf.Bytes(), filename, nil
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
