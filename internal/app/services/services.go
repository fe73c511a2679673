// Package services implements the business rules on top of the repositories.
//
// Services defined in this package:
//   - AuthService: registration, login, token refresh and logout
//   - ProfileService: profiles, photos, the alumni directory and bulk import
//   - ConnectionService: connection requests and their lifecycle
//   - MessageService: direct messages, inbox and the stream replay
//   - JobService, StartupService, DonationService, EventService: content features
//   - AnalyticsService: admin reporting
package services

import (
	"context"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MessageNotifier pushes stored messages to live subscribers
type MessageNotifier interface {
	Broadcast(message *models.Message)
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(*models.Message) {}

// publish emits a domain event. Delivery failures are logged and never fail the operation.
func publish(ctx context.Context, publisher events.Publisher, lgr zerolog.Logger, eventType string, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, eventType, data); err != nil {
		lgr.Warn().Err(err).Str("event", eventType).Msg("Failed to publish domain event")
	}
}

// newPage builds a page with ceil(total/limit) pages
func newPage[T any](items []T, total int64, req helpers.PageRequest) *dto.Page[T] {
	page := dto.NewPage(items, helpers.NewPaginationInfo(total, req))
	return &page
}

// summariesFor resolves user summaries, tolerating ids without a profile
func summariesFor(ctx context.Context, profiles repositories.ProfileRepository, ids []uuid.UUID) (map[uuid.UUID]models.UserSummary, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.UserSummary{}, nil
	}
	return profiles.GetSummaries(ctx, ids)
}

// summaryRef returns a pointer to the summary of id, or nil when unknown
func summaryRef(summaries map[uuid.UUID]models.UserSummary, id uuid.UUID) *models.UserSummary {
	s, ok := summaries[id]
	if !ok {
		return nil
	}
	return &s
}

// clock is the time source of the services; tests replace it
type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
