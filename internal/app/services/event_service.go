package services

import (
	"context"
	"time"

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

// EventService manages events and registrations
type EventService interface {
	Create(ctx context.Context, session appAuth.Session, req *dto.EventRequest) (*dto.EventResponse, error)
	List(ctx context.Context, session appAuth.Session, upcoming bool, page helpers.PageRequest) (*dto.Page[dto.EventResponse], error)
	Get(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.EventResponse, error)
	Update(ctx context.Context, session appAuth.Session, id uuid.UUID, req *dto.EventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, session appAuth.Session, id uuid.UUID) error
	Register(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.EventResponse, error)
	Unregister(ctx context.Context, session appAuth.Session, id uuid.UUID) error
}

type eventServiceImpl struct {
	eventRepo repositories.EventRepository
	publisher events.Publisher
	logger    zerolog.Logger
	now       clock
}

// NewEventService creates a new EventService
func NewEventService(repos *repositories.Repositories, publisher events.Publisher, logger zerolog.Logger) EventService {
	return &eventServiceImpl{
		eventRepo: repos.Events,
		publisher: publisher,
		logger:    logger,
		now:       utcNow,
	}
}

func (s *eventServiceImpl) Create(ctx context.Context, session appAuth.Session, req *dto.EventRequest) (*dto.EventResponse, error) {
	if err := appAuth.RequireRole(session, apperrors.ErrEventCreationDenied, models.RoleAlumni, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperrors.NewValidationError("endsAt must be after startsAt")
	}

	now := s.now()
	event := &models.Event{
		ID:          uuid.New(),
		OrganizerID: session.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	req.Apply(event)

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return &dto.EventResponse{Event: *event}, nil
}

// List returns events by start time; upcoming keeps only events that have not ended
func (s *eventServiceImpl) List(ctx context.Context, session appAuth.Session, upcoming bool, page helpers.PageRequest) (*dto.Page[dto.EventResponse], error) {
	var endsAfter *time.Time
	if upcoming {
		now := s.now()
		endsAfter = &now
	}

	list, total, err := s.eventRepo.List(ctx, endsAfter, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	registered := map[uuid.UUID]bool{}
	if len(ids) > 0 {
		registered, err = s.eventRepo.RegisteredAmong(ctx, session.UserID, ids)
		if err != nil {
			return nil, err
		}
	}

	items := make([]dto.EventResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.EventResponse{Event: *e, IsRegistered: registered[e.ID]})
	}
	return newPage(items, total, page), nil
}

func (s *eventServiceImpl) Get(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withRegistration(ctx, session, event)
}

func (s *eventServiceImpl) Update(ctx context.Context, session appAuth.Session, id uuid.UUID, req *dto.EventRequest) (*dto.EventResponse, error) {
	event, err := s.organizedEvent(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperrors.NewValidationError("endsAt must be after startsAt")
	}
	if req.Capacity != nil && *req.Capacity < event.RegisteredCount {
		return nil, apperrors.ErrCapacityTooSmall
	}

	req.Apply(event)
	event.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return s.withRegistration(ctx, session, event)
}

func (s *eventServiceImpl) Delete(ctx context.Context, session appAuth.Session, id uuid.UUID) error {
	if _, err := s.organizedEvent(ctx, session, id); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, id)
}

// Register signs the caller up. Capacity and duplicates are enforced by the repository.
func (s *eventServiceImpl) Register(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.EndsAt.After(s.now()) {
		return nil, apperrors.ErrEventEnded
	}

	if err := s.eventRepo.Register(ctx, id, session.UserID); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, events.EventRegistered, map[string]interface{}{
		"eventId": id,
		"userId":  session.UserID,
	})

	event, err = s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.EventResponse{Event: *event, IsRegistered: true}, nil
}

func (s *eventServiceImpl) Unregister(ctx context.Context, session appAuth.Session, id uuid.UUID) error {
	if _, err := s.eventRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.eventRepo.Unregister(ctx, id, session.UserID)
}

func (s *eventServiceImpl) organizedEvent(ctx context.Context, session appAuth.Session, id uuid.UUID) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appAuth.RequireOwnerOrAdmin(session, event.OrganizerID, apperrors.ErrNotEventOrganizer); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventServiceImpl) withRegistration(ctx context.Context, session appAuth.Session, event *models.Event) (*dto.EventResponse, error) {
	registered, err := s.eventRepo.RegisteredAmong(ctx, session.UserID, []uuid.UUID{event.ID})
	if err != nil {
		return nil, err
	}
	return &dto.EventResponse{Event: *event, IsRegistered: registered[event.ID]}, nil
}
