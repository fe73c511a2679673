package services

import (
	"context"
	"strings"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultCurrency is used when a donation names no currency
const DefaultCurrency = "USD"

// DonationService records donations and reports on them
type DonationService interface {
	Create(ctx context.Context, session appAuth.Session, req *dto.CreateDonationRequest) (*dto.DonationResponse, error)
	Mine(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.DonationResponse], error)
	List(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.DonationResponse], error)
	Summary(ctx context.Context, session appAuth.Session) (*models.DonationSummary, error)
}

type donationServiceImpl struct {
	donationRepo repositories.DonationRepository
	profileRepo  repositories.ProfileRepository
	logger       zerolog.Logger
	now          clock
}

// NewDonationService creates a new DonationService
func NewDonationService(repos *repositories.Repositories, logger zerolog.Logger) DonationService {
	return &donationServiceImpl{
		donationRepo: repos.Donations,
		profileRepo:  repos.Profiles,
		logger:       logger,
		now:          utcNow,
	}
}

func (s *donationServiceImpl) Create(ctx context.Context, session appAuth.Session, req *dto.CreateDonationRequest) (*dto.DonationResponse, error) {
	if req.Amount <= 0 {
		return nil, apperrors.ErrInvalidDonationAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	donation := &models.Donation{
		ID:        uuid.New(),
		DonorID:   session.UserID,
		Amount:    req.Amount,
		Currency:  currency,
		Purpose:   strings.TrimSpace(req.Purpose),
		Message:   strings.TrimSpace(req.Message),
		Anonymous: req.Anonymous,
		CreatedAt: s.now(),
	}
	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("donationID", donation.ID.String()).
		Int64("amount", donation.Amount).
		Str("currency", donation.Currency).
		Msg("Donation recorded")

	summaries, err := summariesFor(ctx, s.profileRepo, []uuid.UUID{session.UserID})
	if err != nil {
		return nil, err
	}
	return &dto.DonationResponse{Donation: *donation, Donor: summaryRef(summaries, session.UserID)}, nil
}

// Mine lists the caller's own donations, anonymous ones included
func (s *donationServiceImpl) Mine(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.DonationResponse], error) {
	donor := session.UserID
	return s.list(ctx, &donor, page, true)
}

// List shows every donation to admins; donors of anonymous gifts are not revealed
func (s *donationServiceImpl) List(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.DonationResponse], error) {
	if err := appAuth.RequireRole(session, apperrors.ErrAdminRequired, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.list(ctx, nil, page, false)
}

func (s *donationServiceImpl) Summary(ctx context.Context, session appAuth.Session) (*models.DonationSummary, error) {
	if err := appAuth.RequireRole(session, apperrors.ErrAdminRequired, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.donationRepo.Summary(ctx)
}

func (s *donationServiceImpl) list(ctx context.Context, donorID *uuid.UUID, page helpers.PageRequest, revealAnonymous bool) (*dto.Page[dto.DonationResponse], error) {
	donations, total, err := s.donationRepo.List(ctx, donorID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(donations))
	for _, d := range donations {
		if revealAnonymous || !d.Anonymous {
			ids = append(ids, d.DonorID)
		}
	}
	summaries, err := summariesFor(ctx, s.profileRepo, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DonationResponse, 0, len(donations))
	for _, d := range donations {
		resp := dto.DonationResponse{Donation: *d}
		if revealAnonymous || !d.Anonymous {
			resp.Donor = summaryRef(summaries, d.DonorID)
		}
		items = append(items, resp)
	}
	return newPage(items, total, page), nil
}
