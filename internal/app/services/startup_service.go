package services

import (
	"context"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StartupService manages startup listings and their review
type StartupService interface {
	Create(ctx context.Context, session appAuth.Session, req *dto.StartupRequest) (*dto.StartupResponse, error)
	List(ctx context.Context, session appAuth.Session, query *dto.StartupListQuery, page helpers.PageRequest) (*dto.Page[dto.StartupResponse], error)
	Get(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.StartupResponse, error)
	MyStartup(ctx context.Context, session appAuth.Session) (*dto.StartupResponse, error)
	Update(ctx context.Context, session appAuth.Session, id uuid.UUID, req *dto.StartupRequest) (*dto.StartupResponse, error)
	Delete(ctx context.Context, session appAuth.Session, id uuid.UUID) error
	Approve(ctx context.Context, session appAuth.Session, id uuid.UUID, note string) (*dto.StartupResponse, error)
	Reject(ctx context.Context, session appAuth.Session, id uuid.UUID, note string) (*dto.StartupResponse, error)
	Pending(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.StartupResponse], error)
	Statistics(ctx context.Context, session appAuth.Session) (*dto.StartupStatistics, error)
}

type startupServiceImpl struct {
	startupRepo repositories.StartupRepository
	profileRepo repositories.ProfileRepository
	publisher   events.Publisher
	logger      zerolog.Logger
	now         clock
}

// NewStartupService creates a new StartupService
func NewStartupService(repos *repositories.Repositories, publisher events.Publisher, logger zerolog.Logger) StartupService {
	return &startupServiceImpl{
		startupRepo: repos.Startups,
		profileRepo: repos.Profiles,
		publisher:   publisher,
		logger:      logger,
		now:         utcNow,
	}
}

// Create submits a listing for review; each user owns at most one
func (s *startupServiceImpl) Create(ctx context.Context, session appAuth.Session, req *dto.StartupRequest) (*dto.StartupResponse, error) {
	now := s.now()
	startup := &models.Startup{
		ID:        uuid.New(),
		OwnerID:   session.UserID,
		Status:    models.StartupPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Apply(startup)

	if err := s.startupRepo.Create(ctx, startup); err != nil {
		return nil, err
	}
	return s.withFounder(ctx, startup)
}

// List shows approved listings; admins may filter by any status
func (s *startupServiceImpl) List(ctx context.Context, session appAuth.Session, query *dto.StartupListQuery, page helpers.PageRequest) (*dto.Page[dto.StartupResponse], error) {
	filter := models.StartupFilter{}
	if query != nil {
		filter = models.StartupFilter{
			Status:   models.StartupStatus(query.Status),
			Industry: query.Industry,
			Search:   query.Search,
		}
	}
	if !session.IsAdmin() {
		filter.Status = models.StartupApproved
	}
	return s.list(ctx, filter, page)
}

// Get returns a listing. Listings under review or rejected are hidden from everyone but the owner and admins.
func (s *startupServiceImpl) Get(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.StartupResponse, error) {
	startup, err := s.startupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if startup.Status != models.StartupApproved && !session.CanModify(startup.OwnerID) {
		return nil, apperrors.ErrStartupNotFound
	}
	return s.withFounder(ctx, startup)
}

func (s *startupServiceImpl) MyStartup(ctx context.Context, session appAuth.Session) (*dto.StartupResponse, error) {
	startup, err := s.startupRepo.GetByOwner(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return s.withFounder(ctx, startup)
}

func (s *startupServiceImpl) Update(ctx context.Context, session appAuth.Session, id uuid.UUID, req *dto.StartupRequest) (*dto.StartupResponse, error) {
	startup, err := s.ownedStartup(ctx, session, id)
	if err != nil {
		return nil, err
	}

	req.Apply(startup)
	startup.UpdatedAt = s.now()
	if err := s.startupRepo.Update(ctx, startup); err != nil {
		return nil, err
	}
	return s.withFounder(ctx, startup)
}

func (s *startupServiceImpl) Delete(ctx context.Context, session appAuth.Session, id uuid.UUID) error {
	if _, err := s.ownedStartup(ctx, session, id); err != nil {
		return err
	}
	return s.startupRepo.Delete(ctx, id)
}

func (s *startupServiceImpl) Approve(ctx context.Context, session appAuth.Session, id uuid.UUID, note string) (*dto.StartupResponse, error) {
	return s.review(ctx, session, id, models.StartupApproved, note)
}

func (s *startupServiceImpl) Reject(ctx context.Context, session appAuth.Session, id uuid.UUID, note string) (*dto.StartupResponse, error) {
	return s.review(ctx, session, id, models.StartupRejected, note)
}

func (s *startupServiceImpl) review(ctx context.Context, session appAuth.Session, id uuid.UUID, status models.StartupStatus, note string) (*dto.StartupResponse, error) {
	if err := appAuth.RequireRole(session, apperrors.ErrAdminRequired, models.RoleAdmin); err != nil {
		return nil, err
	}

	startup, err := s.startupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if startup.Status != models.StartupPending {
		return nil, apperrors.ErrStartupNotPending
	}

	if err := s.startupRepo.Review(ctx, id, status, note); err != nil {
		return nil, err
	}
	startup.Status = status
	startup.ReviewNote = note
	startup.UpdatedAt = s.now()

	s.logger.Info().Str("startupID", id.String()).Str("status", string(status)).Msg("Startup reviewed")
	publish(ctx, s.publisher, s.logger, events.StartupReviewed, map[string]interface{}{
		"startupId":  startup.ID,
		"ownerId":    startup.OwnerID,
		"status":     status,
		"reviewerId": session.UserID,
	})
	return s.withFounder(ctx, startup)
}

func (s *startupServiceImpl) Pending(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.StartupResponse], error) {
	if err := appAuth.RequireRole(session, apperrors.ErrAdminRequired, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.list(ctx, models.StartupFilter{Status: models.StartupPending}, page)
}

func (s *startupServiceImpl) Statistics(ctx context.Context, session appAuth.Session) (*dto.StartupStatistics, error) {
	if err := appAuth.RequireRole(session, apperrors.ErrAdminRequired, models.RoleAdmin); err != nil {
		return nil, err
	}

	counts, err := s.startupRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.StartupStatistics{ByStatus: map[models.StartupStatus]int64{
		models.StartupPending:  0,
		models.StartupApproved: 0,
		models.StartupRejected: 0,
	}}
	for status, n := range counts {
		stats.ByStatus[status] = n
		stats.Total += n
	}
	return stats, nil
}

func (s *startupServiceImpl) ownedStartup(ctx context.Context, session appAuth.Session, id uuid.UUID) (*models.Startup, error) {
	startup, err := s.startupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appAuth.RequireOwnerOrAdmin(session, startup.OwnerID, apperrors.ErrNotStartupOwner); err != nil {
		return nil, err
	}
	return startup, nil
}

func (s *startupServiceImpl) list(ctx context.Context, filter models.StartupFilter, page helpers.PageRequest) (*dto.Page[dto.StartupResponse], error) {
	startups, total, err := s.startupRepo.List(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(startups))
	for _, st := range startups {
		ids = append(ids, st.OwnerID)
	}
	summaries, err := summariesFor(ctx, s.profileRepo, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.StartupResponse, 0, len(startups))
	for _, st := range startups {
		items = append(items, dto.StartupResponse{Startup: *st, Founder: summaryRef(summaries, st.OwnerID)})
	}
	return newPage(items, total, page), nil
}

func (s *startupServiceImpl) withFounder(ctx context.Context, startup *models.Startup) (*dto.StartupResponse, error) {
	summaries, err := summariesFor(ctx, s.profileRepo, []uuid.UUID{startup.OwnerID})
	if err != nil {
		return nil, err
	}
	return &dto.StartupResponse{Startup: *startup, Founder: summaryRef(summaries, startup.OwnerID)}, nil
}
