package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/services"
	"github.com/alnet/mentorbridge/internal/middleware"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/alnet/mentorbridge/internal/pkg/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MessageController handles direct messaging endpoints and the message stream
type MessageController struct {
	messageService services.MessageService
	hub            *websocket.Hub
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService, hub *websocket.Hub, logger zerolog.Logger) *MessageController {
	return &MessageController{
		messageService: messageService,
		hub:            hub,
		logger:         logger,
	}
}

// Send stores a message and pushes it to open streams of both participants
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Receiver and content"
// @Success 201 {object} dto.Response[models.Message]
// @Failure 403 {object} dto.ErrorResponse "Messaging not allowed"
// @Router /messages [post]
func (c *MessageController) Send(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	msg, err := c.messageService.Send(ctx.Request.Context(), session, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewResponse(msg, ""))
}

// Conversations lists one inbox row per counterpart, most recent first
// @Summary List conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Page[dto.ConversationResponse]]
// @Router /messages [get]
func (c *MessageController) Conversations(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	page, err := c.messageService.Conversations(ctx.Request.Context(), session, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Conversation returns the messages exchanged with one user, oldest first
// @Summary Get conversation
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other user ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.Page[models.Message]]
// @Router /messages/{userId} [get]
func (c *MessageController) Conversation(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	otherID, ok := middleware.ParseUUIDParam(ctx, "userId")
	if !ok {
		return
	}

	page, err := c.messageService.Conversation(ctx.Request.Context(), session, otherID, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// MarkRead marks the caller's incoming messages from one user as read
// @Summary Mark conversation read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other user ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.MarkReadResponse]
// @Router /messages/{userId}/read [patch]
func (c *MessageController) MarkRead(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	otherID, ok := middleware.ParseUUIDParam(ctx, "userId")
	if !ok {
		return
	}

	resp, err := c.messageService.MarkRead(ctx.Request.Context(), session, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(resp, ""))
}

// UnreadCount returns the caller's total unread messages
// @Summary Unread count
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.CountResponse]
// @Router /messages/unread-count [get]
func (c *MessageController) UnreadCount(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	count, err := c.messageService.UnreadCount(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(dto.CountResponse{Count: count}, ""))
}

// Stream upgrades to a websocket. Stored messages newer than since are replayed
// first, then live messages follow. A client that falls behind is disconnected
// and resumes by reconnecting with since set to the last createdAt it saw.
// @Summary Message stream
// @Tags messages
// @Security BearerAuth
// @Param with query string false "Restrict to one conversation" Format(uuid)
// @Param since query string false "Replay messages newer than this RFC3339 time"
// @Router /messages/stream [get]
func (c *MessageController) Stream(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	sub := websocket.Subscription{UserID: session.UserID}
	if raw := ctx.Query("with"); raw != "" {
		with, err := uuid.Parse(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("with must be a user ID").
				WithDetails(map[string]interface{}{"with": raw}))
			return
		}
		sub.With = &with
	}

	var since time.Time
	if raw := ctx.Query("since"); raw != "" {
		t, err := helpers.ParseTimestamp(raw, false)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("since must be an RFC3339 timestamp").
				WithDetails(map[string]interface{}{"since": raw}))
			return
		}
		since = t
	}

	replay := func(rctx context.Context) ([]*models.Message, error) {
		return c.messageService.Replay(rctx, session, sub.With, since)
	}

	if err := c.hub.Serve(ctx.Writer, ctx.Request, sub, replay); err != nil {
		c.logger.Debug().Err(err).Str("userID", session.UserID.String()).Msg("Stream connection not established")
	}
}
