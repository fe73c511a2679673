package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

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

// DefaultReplayLimit caps how many stored messages a stream replays
const DefaultReplayLimit = 500

// MessageService handles direct messaging
type MessageService interface {
	Send(ctx context.Context, session appAuth.Session, req *dto.SendMessageRequest) (*models.Message, error)
	Conversation(ctx context.Context, session appAuth.Session, otherID uuid.UUID, page helpers.PageRequest) (*dto.Page[*models.Message], error)
	MarkRead(ctx context.Context, session appAuth.Session, otherID uuid.UUID) (*dto.MarkReadResponse, error)
	Conversations(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.ConversationResponse], error)
	UnreadCount(ctx context.Context, session appAuth.Session) (int64, error)
	// Replay returns stored messages newer than since; a zero since replays nothing
	Replay(ctx context.Context, session appAuth.Session, with *uuid.UUID, since time.Time) ([]*models.Message, error)
}

// MessageOptions tune messaging rules
type MessageOptions struct {
	// RequireConnection restricts messaging to accepted connections
	RequireConnection bool
	ReplayLimit       int
}

type messageServiceImpl struct {
	userRepo       repositories.UserRepository
	profileRepo    repositories.ProfileRepository
	connectionRepo repositories.ConnectionRepository
	messageRepo    repositories.MessageRepository
	notifier       MessageNotifier
	publisher      events.Publisher
	logger         zerolog.Logger
	opts           MessageOptions
	now            clock
}

// NewMessageService creates a new MessageService. A nil notifier disables live push.
func NewMessageService(
	repos *repositories.Repositories,
	notifier MessageNotifier,
	publisher events.Publisher,
	opts MessageOptions,
	logger zerolog.Logger,
) MessageService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if opts.ReplayLimit <= 0 {
		opts.ReplayLimit = DefaultReplayLimit
	}
	return &messageServiceImpl{
		userRepo:       repos.Users,
		profileRepo:    repos.Profiles,
		connectionRepo: repos.Connections,
		messageRepo:    repos.Messages,
		notifier:       notifier,
		publisher:      publisher,
		logger:         logger,
		opts:           opts,
		now:            utcNow,
	}
}

// Send stores a message and pushes it to both participants' streams
func (s *messageServiceImpl) Send(ctx context.Context, session appAuth.Session, req *dto.SendMessageRequest) (*models.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || utf8.RuneCountInString(req.Content) > models.MaxMessageLength {
		return nil, apperrors.ErrMessageEmpty
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return nil, apperrors.NewValidationError("receiverId must be a valid UUID")
	}
	if receiverID == session.UserID {
		return nil, apperrors.ErrMessageSelf
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	if err := s.checkMessagingAllowed(ctx, session.UserID, receiverID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	now := s.now()
	msg := &models.Message{
		ID:         id,
		SenderID:   session.UserID,
		ReceiverID: receiverID,
		Content:    req.Content,
		Status:     models.MessageSent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.notifier.Broadcast(msg)
	publish(ctx, s.publisher, s.logger, events.MessageSent, map[string]interface{}{
		"messageId":  msg.ID,
		"senderId":   msg.SenderID,
		"receiverId": msg.ReceiverID,
	})
	return msg, nil
}

// checkMessagingAllowed rejects blocked pairs and, when configured, pairs without an accepted connection
func (s *messageServiceImpl) checkMessagingAllowed(ctx context.Context, senderID, receiverID uuid.UUID) error {
	conn, err := s.connectionRepo.FindActiveBetween(ctx, senderID, receiverID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			return err
		}
		conn = nil
	}

	if conn != nil && conn.Status == models.ConnectionBlocked {
		return apperrors.ErrMessagingBlocked
	}
	if s.opts.RequireConnection && (conn == nil || conn.Status != models.ConnectionAccepted) {
		return apperrors.ErrConnectionRequired
	}
	return nil
}

// Conversation pages through the messages of the caller and otherID. Incoming
// messages the caller has not seen yet advance to delivered.
func (s *messageServiceImpl) Conversation(ctx context.Context, session appAuth.Session, otherID uuid.UUID, page helpers.PageRequest) (*dto.Page[*models.Message], error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	if _, err := s.messageRepo.AdvanceStatus(ctx, session.UserID, otherID, models.MessageDelivered); err != nil {
		return nil, err
	}

	msgs, total, err := s.messageRepo.ListConversation(ctx, session.UserID, otherID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	return newPage(msgs, total, page), nil
}

// MarkRead advances the caller's incoming messages from otherID to read
func (s *messageServiceImpl) MarkRead(ctx context.Context, session appAuth.Session, otherID uuid.UUID) (*dto.MarkReadResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	updated, err := s.messageRepo.AdvanceStatus(ctx, session.UserID, otherID, models.MessageRead)
	if err != nil {
		return nil, err
	}

	if updated > 0 {
		publish(ctx, s.publisher, s.logger, events.MessagesRead, map[string]interface{}{
			"readerId": session.UserID,
			"senderId": otherID,
			"count":    updated,
		})
	}
	return &dto.MarkReadResponse{Updated: updated}, nil
}

// Conversations lists the caller's inbox, most recent activity first
func (s *messageServiceImpl) Conversations(ctx context.Context, session appAuth.Session, page helpers.PageRequest) (*dto.Page[dto.ConversationResponse], error) {
	rows, total, err := s.messageRepo.ListConversations(ctx, session.UserID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CounterpartID)
	}
	summaries, err := summariesFor(ctx, s.profileRepo, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ConversationResponse, 0, len(rows))
	for _, r := range rows {
		counterpart, ok := summaries[r.CounterpartID]
		if !ok {
			counterpart = models.UserSummary{ID: r.CounterpartID}
		}
		items = append(items, dto.ConversationResponse{
			Counterpart:    counterpart,
			LastMessage:    r.LastMessage,
			LastActivityAt: r.LastActivityAt,
			UnreadCount:    r.UnreadCount,
		})
	}
	return newPage(items, total, page), nil
}

// UnreadCount counts the caller's incoming messages that are not read
func (s *messageServiceImpl) UnreadCount(ctx context.Context, session appAuth.Session) (int64, error) {
	return s.messageRepo.CountUnread(ctx, session.UserID)
}

func (s *messageServiceImpl) Replay(ctx context.Context, session appAuth.Session, with *uuid.UUID, since time.Time) ([]*models.Message, error) {
	if since.IsZero() {
		return nil, nil
	}
	return s.messageRepo.ListSince(ctx, session.UserID, with, since, s.opts.ReplayLimit)
}
