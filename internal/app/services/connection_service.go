package services

import (
	"context"
	"errors"
	"strings"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/email"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConnectionService manages connection requests between users
type ConnectionService interface {
	SendRequest(ctx context.Context, session appAuth.Session, req *dto.SendConnectionRequest) (*dto.ConnectionResponse, error)
	Respond(ctx context.Context, session appAuth.Session, id uuid.UUID, accepted bool) (*dto.ConnectionResponse, error)
	Remove(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.ConnectionResponse, error)
	Block(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.ConnectionResponse, error)
	ListConnections(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.ConnectionResponse], error)
	ListPending(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.ConnectionResponse], error)
	ListSent(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.ConnectionResponse], error)
	Status(ctx context.Context, session appAuth.Session, otherID uuid.UUID) (*dto.ConnectionStatusResponse, error)
}

// connectionEvent is the payload of connection domain events
type connectionEvent struct {
	ConnectionID uuid.UUID               `json:"connectionId"`
	RequesterID  uuid.UUID               `json:"requesterId"`
	ReceiverID   uuid.UUID               `json:"receiverId"`
	Status       models.ConnectionStatus `json:"status"`
	ActorID      uuid.UUID               `json:"actorId"`
}

type connectionServiceImpl struct {
	userRepo       repositories.UserRepository
	profileRepo    repositories.ProfileRepository
	connectionRepo repositories.ConnectionRepository
	emailService   email.EmailService
	publisher      events.Publisher
	logger         zerolog.Logger
	now            clock
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(
	repos *repositories.Repositories,
	emailService email.EmailService,
	publisher events.Publisher,
	logger zerolog.Logger,
) ConnectionService {
	return &connectionServiceImpl{
		userRepo:       repos.Users,
		profileRepo:    repos.Profiles,
		connectionRepo: repos.Connections,
		emailService:   emailService,
		publisher:      publisher,
		logger:         logger,
		now:            utcNow,
	}
}

// SendRequest creates a pending connection from the caller to the receiver
func (s *connectionServiceImpl) SendRequest(ctx context.Context, session appAuth.Session, req *dto.SendConnectionRequest) (*dto.ConnectionResponse, error) {
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return nil, apperrors.NewValidationError("receiverId must be a valid UUID")
	}
	if receiverID == session.UserID {
		return nil, apperrors.ErrConnectionSelf
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !receiver.IsActive {
		return nil, apperrors.ErrUserNotFound
	}

	var message *string
	if req.Message != nil {
		if trimmed := strings.TrimSpace(*req.Message); trimmed != "" {
			message = &trimmed
		}
	}

	now := s.now()
	conn := &models.Connection{
		ID:          uuid.New(),
		RequesterID: session.UserID,
		ReceiverID:  receiverID,
		Status:      models.ConnectionPending,
		Message:     message,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.connectionRepo.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.emit(ctx, events.ConnectionRequested, conn, session.UserID)

	summaries, err := summariesFor(ctx, s.profileRepo, []uuid.UUID{session.UserID, receiverID})
	if err != nil {
		return nil, err
	}
	if sender, ok := summaries[session.UserID]; ok {
		go s.notifyReceiver(receiver.Email, summaries[receiverID], sender)
	}

	resp := dto.NewConnectionResponse(conn, summaryRef(summaries, receiverID))
	return &resp, nil
}

func (s *connectionServiceImpl) notifyReceiver(to string, receiver, sender models.UserSummary) {
	toName := strings.TrimSpace(receiver.FirstName + " " + receiver.LastName)
	fromName := strings.TrimSpace(sender.FirstName + " " + sender.LastName)
	if err := s.emailService.SendConnectionRequestEmail(to, toName, fromName); err != nil {
		s.logger.Warn().Err(err).Str("email", to).Msg("Failed to send connection request email")
	}
}

// Respond accepts or rejects a pending request; only the receiver may respond
func (s *connectionServiceImpl) Respond(ctx context.Context, session appAuth.Session, id uuid.UUID, accepted bool) (*dto.ConnectionResponse, error) {
	conn, err := s.connectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn.ReceiverID != session.UserID {
		return nil, apperrors.ErrNotConnectionReceiver
	}
	if conn.Status != models.ConnectionPending {
		return nil, apperrors.ErrConnectionNotPending
	}

	to, eventType := models.ConnectionRejected, events.ConnectionRejected
	if accepted {
		to, eventType = models.ConnectionAccepted, events.ConnectionAccepted
	}

	updated, err := s.connectionRepo.TransitionStatus(ctx, id, []models.ConnectionStatus{models.ConnectionPending}, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrConnectionStatusChanged) {
			return nil, apperrors.ErrConnectionNotPending
		}
		return nil, err
	}

	s.emit(ctx, eventType, updated, session.UserID)
	return s.withCounterpart(ctx, updated, session.UserID)
}

// Remove ends an accepted connection; either party may remove it
func (s *connectionServiceImpl) Remove(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.ConnectionResponse, error) {
	conn, err := s.connectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conn.Involves(session.UserID) {
		return nil, apperrors.ErrNotConnectionMember
	}
	if conn.Status != models.ConnectionAccepted {
		return nil, apperrors.ErrConnectionNotAccepted
	}

	updated, err := s.connectionRepo.TransitionStatus(ctx, id, []models.ConnectionStatus{models.ConnectionAccepted}, models.ConnectionRejected)
	if err != nil {
		if errors.Is(err, apperrors.ErrConnectionStatusChanged) {
			return nil, apperrors.ErrConnectionNotAccepted
		}
		return nil, err
	}

	s.emit(ctx, events.ConnectionRemoved, updated, session.UserID)
	return s.withCounterpart(ctx, updated, session.UserID)
}

// Block marks the connection blocked; blocked pairs can neither request nor message
func (s *connectionServiceImpl) Block(ctx context.Context, session appAuth.Session, id uuid.UUID) (*dto.ConnectionResponse, error) {
	conn, err := s.connectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conn.Involves(session.UserID) {
		return nil, apperrors.ErrNotConnectionMember
	}
	if conn.Status == models.ConnectionBlocked {
		return s.withCounterpart(ctx, conn, session.UserID)
	}

	from := []models.ConnectionStatus{models.ConnectionPending, models.ConnectionAccepted, models.ConnectionRejected}
	updated, err := s.connectionRepo.TransitionStatus(ctx, id, from, models.ConnectionBlocked)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.ConnectionBlocked, updated, session.UserID)
	return s.withCounterpart(ctx, updated, session.UserID)
}

// ListConnections lists accepted connections in either direction
func (s *connectionServiceImpl) ListConnections(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.ConnectionResponse], error) {
	return s.list(ctx, session.UserID, models.ConnectionAccepted, models.DirectionAny, page)
}

// ListPending lists pending requests the caller received
func (s *connectionServiceImpl) ListPending(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.ConnectionResponse], error) {
	return s.list(ctx, session.UserID, models.ConnectionPending, models.DirectionIncoming, page)
}

// ListSent lists pending requests the caller sent
func (s *connectionServiceImpl) ListSent(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.ConnectionResponse], error) {
	return s.list(ctx, session.UserID, models.ConnectionPending, models.DirectionOutgoing, page)
}

func (s *connectionServiceImpl) list(ctx context.Context, userID uuid.UUID, status models.ConnectionStatus, direction models.ConnectionDirection, page helpers.PageRequest) (*dto.Page[dto.ConnectionResponse], error) {
	conns, total, err := s.connectionRepo.ListForUser(ctx, userID, status, direction, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.Counterpart(userID))
	}
	summaries, err := summariesFor(ctx, s.profileRepo, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		items = append(items, dto.NewConnectionResponse(c, summaryRef(summaries, c.Counterpart(userID))))
	}
	return newPage(items, total, page), nil
}

// Status reports the relationship between the caller and otherID
func (s *connectionServiceImpl) Status(ctx context.Context, session appAuth.Session, otherID uuid.UUID) (*dto.ConnectionStatusResponse, error) {
	if otherID == session.UserID {
		return nil, apperrors.ErrConnectionSelf
	}

	conn, err := s.connectionRepo.FindLatestBetween(ctx, session.UserID, otherID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return &dto.ConnectionStatusResponse{Status: models.ConnectionNone}, nil
		}
		return nil, err
	}

	direction := string(models.DirectionIncoming)
	if conn.RequesterID == session.UserID {
		direction = string(models.DirectionOutgoing)
	}
	return &dto.ConnectionStatusResponse{
		Status:       conn.Status,
		ConnectionID: &conn.ID,
		Direction:    direction,
	}, nil
}

func (s *connectionServiceImpl) withCounterpart(ctx context.Context, conn *models.Connection, viewer uuid.UUID) (*dto.ConnectionResponse, error) {
	counterpart := conn.Counterpart(viewer)
	summaries, err := summariesFor(ctx, s.profileRepo, []uuid.UUID{counterpart})
	if err != nil {
		return nil, err
	}
	resp := dto.NewConnectionResponse(conn, summaryRef(summaries, counterpart))
	return &resp, nil
}

func (s *connectionServiceImpl) emit(ctx context.Context, eventType string, conn *models.Connection, actor uuid.UUID) {
	publish(ctx, s.publisher, s.logger, eventType, connectionEvent{
		ConnectionID: conn.ID,
		RequesterID:  conn.RequesterID,
		ReceiverID:   conn.ReceiverID,
		Status:       conn.Status,
		ActorID:      actor,
	})
}
