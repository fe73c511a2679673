package controllers

import (
	"net/http"
	"strconv"

	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/services"
	"github.com/alnet/mentorbridge/internal/middleware"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EventController handles event and registration endpoints
type EventController struct {
	eventService services.EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService, logger zerolog.Logger) *EventController {
	return &EventController{
		eventService: eventService,
		logger:       logger,
	}
}

// Create schedules a new event
// @Summary Create event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EventRequest true "Event details"
// @Success 201 {object} dto.Response[dto.EventResponse]
// @Router /events [post]
func (c *EventController) Create(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	var req dto.EventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.Create(ctx.Request.Context(), session, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewResponse(event, "Event created successfully"))
}

// List returns events, only those not yet ended when upcoming=true
// @Summary List events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param upcoming query bool false "Only events that have not ended"
// @Success 200 {object} dto.Response[dto.Page[dto.EventResponse]]
// @Router /events [get]
func (c *EventController) List(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	upcoming := false
	if raw := ctx.Query("upcoming"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("upcoming must be true or false"))
			return
		}
		upcoming = v
	}

	page, err := c.eventService.List(ctx.Request.Context(), session, upcoming, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Get returns one event
// @Summary Get event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.EventResponse]
// @Router /events/{id} [get]
func (c *EventController) Get(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	event, err := c.eventService.Get(ctx.Request.Context(), session, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(event, ""))
}

// Update replaces an event's details
// @Summary Update event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Param request body dto.EventRequest true "Event details"
// @Success 200 {object} dto.Response[dto.EventResponse]
// @Router /events/{id} [put]
func (c *EventController) Update(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.EventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.Update(ctx.Request.Context(), session, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(event, "Event updated successfully"))
}

// Delete cancels an event
// @Summary Delete event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.MessageResponse]
// @Router /events/{id} [delete]
func (c *EventController) Delete(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.Delete(ctx.Request.Context(), session, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(dto.MessageResponse{Message: "Event deleted successfully"}, ""))
}

// Register signs the caller up for an event
// @Summary Register for event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Success 201 {object} dto.Response[dto.EventResponse]
// @Failure 409 {object} dto.ErrorResponse "Already registered or event full"
// @Router /events/{id}/register [post]
func (c *EventController) Register(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	event, err := c.eventService.Register(ctx.Request.Context(), session, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewResponse(event, "Registered for event"))
}

// Unregister withdraws the caller's registration
// @Summary Cancel event registration
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.MessageResponse]
// @Router /events/{id}/register [delete]
func (c *EventController) Unregister(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.Unregister(ctx.Request.Context(), session, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(dto.MessageResponse{Message: "Registration cancelled"}, ""))
}
