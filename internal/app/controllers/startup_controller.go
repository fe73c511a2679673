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

// StartupController handles startup showcase endpoints
type StartupController struct {
	startupService services.StartupService
	logger         zerolog.Logger
}

// NewStartupController creates a new StartupController
func NewStartupController(startupService services.StartupService, logger zerolog.Logger) *StartupController {
	return &StartupController{
		startupService: startupService,
		logger:         logger,
	}
}

// Create submits the caller's startup for review
// @Summary Create startup
// @Tags startups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartupRequest true "Startup details"
// @Success 201 {object} dto.Response[dto.StartupResponse]
// @Failure 409 {object} dto.ErrorResponse "Caller already has a startup"
// @Router /startups [post]
func (c *StartupController) Create(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	var req dto.StartupRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	startup, err := c.startupService.Create(ctx.Request.Context(), session, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewResponse(startup, "Startup submitted for review"))
}

// List returns approved startups; admins may filter by any status
// @Summary List startups
// @Tags startups
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected (admin)"
// @Param industry query string false "Industry"
// @Param search query string false "Name or description substring"
// @Success 200 {object} dto.Response[dto.Page[dto.StartupResponse]]
// @Router /startups [get]
func (c *StartupController) List(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	var query dto.StartupListQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	page, err := c.startupService.List(ctx.Request.Context(), session, &query, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Get returns one startup
// @Summary Get startup
// @Tags startups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Startup ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.StartupResponse]
// @Router /startups/{id} [get]
func (c *StartupController) Get(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	startup, err := c.startupService.Get(ctx.Request.Context(), session, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(startup, ""))
}

// MyStartup returns the caller's startup in any review state
// @Summary My startup
// @Tags startups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.StartupResponse]
// @Router /startups/my-startup [get]
func (c *StartupController) MyStartup(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	startup, err := c.startupService.MyStartup(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(startup, ""))
}

// Update replaces a startup's details
// @Summary Update startup
// @Tags startups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Startup ID" Format(uuid)
// @Param request body dto.StartupRequest true "Startup details"
// @Success 200 {object} dto.Response[dto.StartupResponse]
// @Router /startups/{id} [put]
func (c *StartupController) Update(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.StartupRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	startup, err := c.startupService.Update(ctx.Request.Context(), session, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(startup, "Startup updated successfully"))
}

// Delete removes a startup
// @Summary Delete startup
// @Tags startups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Startup ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.MessageResponse]
// @Router /startups/{id} [delete]
func (c *StartupController) Delete(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.startupService.Delete(ctx.Request.Context(), session, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(dto.MessageResponse{Message: "Startup deleted successfully"}, ""))
}

// Approve publishes a pending startup
// @Summary Approve startup
// @Tags startups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Startup ID" Format(uuid)
// @Param request body dto.ReviewStartupRequest false "Reviewer note"
// @Success 200 {object} dto.Response[dto.StartupResponse]
// @Router /startups/{id}/approve [patch]
func (c *StartupController) Approve(ctx *gin.Context) {
	c.review(ctx, c.startupService.Approve)
}

// Reject declines a pending startup
// @Summary Reject startup
// @Tags startups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Startup ID" Format(uuid)
// @Param request body dto.ReviewStartupRequest false "Reviewer note"
// @Success 200 {object} dto.Response[dto.StartupResponse]
// @Router /startups/{id}/reject [patch]
func (c *StartupController) Reject(ctx *gin.Context) {
	c.review(ctx, c.startupService.Reject)
}

func (c *StartupController) review(ctx *gin.Context, decide func(context.Context, appAuth.Session, uuid.UUID, string) (*dto.StartupResponse, error)) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ReviewStartupRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	startup, err := decide(ctx.Request.Context(), session, id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("startupID", id.String()).
		Str("status", string(startup.Status)).
		Str("reviewer", session.UserID.String()).
		Msg("Startup reviewed")
	ctx.JSON(http.StatusOK, dto.NewResponse(startup, ""))
}

// Pending lists startups awaiting review
// @Summary Pending startups
// @Tags startups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Page[dto.StartupResponse]]
// @Router /startups/pending [get]
func (c *StartupController) Pending(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	page, err := c.startupService.Pending(ctx.Request.Context(), session, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Statistics counts startups per review status
// @Summary Startup statistics
// @Tags startups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.StartupStatistics]
// @Router /startups/statistics [get]
func (c *StartupController) Statistics(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	stats, err := c.startupService.Statistics(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(stats, ""))
}
