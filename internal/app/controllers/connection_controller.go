package controllers

import (
	"context"
	"net/http"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/services"
	"github.com/alnet/mentorbridge/internal/middleware"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConnectionController handles connection request endpoints
type ConnectionController struct {
	connectionService services.ConnectionService
	logger            zerolog.Logger
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService services.ConnectionService, logger zerolog.Logger) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
		logger:            logger,
	}
}

// SendRequest creates a pending connection request
// @Summary Send connection request
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendConnectionRequest true "Receiver and optional message"
// @Success 201 {object} dto.Response[dto.ConnectionResponse]
// @Failure 409 {object} dto.ErrorResponse "Connection already exists"
// @Router /connections [post]
func (c *ConnectionController) SendRequest(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	var req dto.SendConnectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	conn, err := c.connectionService.SendRequest(ctx.Request.Context(), session, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewResponse(conn, "Connection request sent"))
}

// Respond accepts or rejects a pending request addressed to the caller
// @Summary Respond to connection request
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Connection ID" Format(uuid)
// @Param request body dto.RespondConnectionRequest true "Decision"
// @Success 200 {object} dto.Response[dto.ConnectionResponse]
// @Router /connections/{id} [patch]
func (c *ConnectionController) Respond(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RespondConnectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	conn, err := c.connectionService.Respond(ctx.Request.Context(), session, id, *req.Accepted)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(conn, ""))
}

// Remove ends an accepted connection
// @Summary Remove connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Connection ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.ConnectionResponse]
// @Router /connections/{id} [delete]
func (c *ConnectionController) Remove(ctx *gin.Context) {
	c.transition(ctx, c.connectionService.Remove)
}

// Block blocks the counterpart of a connection
// @Summary Block connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Connection ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.ConnectionResponse]
// @Router /connections/{id}/block [post]
func (c *ConnectionController) Block(ctx *gin.Context) {
	c.transition(ctx, c.connectionService.Block)
}

func (c *ConnectionController) transition(ctx *gin.Context, apply func(context.Context, appAuth.Session, uuid.UUID) (*dto.ConnectionResponse, error)) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	conn, err := apply(ctx.Request.Context(), session, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(conn, ""))
}

// ListConnections lists accepted connections in either direction
// @Summary List connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.Response[dto.Page[dto.ConnectionResponse]]
// @Router /connections [get]
func (c *ConnectionController) ListConnections(ctx *gin.Context) {
	c.list(ctx, c.connectionService.ListConnections)
}

// ListPending lists pending requests received by the caller
// @Summary List received requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Page[dto.ConnectionResponse]]
// @Router /connections/pending [get]
func (c *ConnectionController) ListPending(ctx *gin.Context) {
	c.list(ctx, c.connectionService.ListPending)
}

// ListSent lists pending requests sent by the caller
// @Summary List sent requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Page[dto.ConnectionResponse]]
// @Router /connections/sent [get]
func (c *ConnectionController) ListSent(ctx *gin.Context) {
	c.list(ctx, c.connectionService.ListSent)
}

func (c *ConnectionController) list(ctx *gin.Context, load func(context.Context, appAuth.Session, helpers.PageRequest) (*dto.Page[dto.ConnectionResponse], error)) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	page, err := load(ctx.Request.Context(), session, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Status reports the relationship between the caller and another user
// @Summary Connection status
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other user ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.ConnectionStatusResponse]
// @Router /connections/status/{userId} [get]
func (c *ConnectionController) Status(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	otherID, ok := middleware.ParseUUIDParam(ctx, "userId")
	if !ok {
		return
	}

	status, err := c.connectionService.Status(ctx.Request.Context(), session, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(status, ""))
}
