package controllers

import (
	"net/http"

	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/services"
	"github.com/alnet/mentorbridge/internal/middleware"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DonationController handles donation endpoints
type DonationController struct {
	donationService services.DonationService
	logger          zerolog.Logger
}

// NewDonationController creates a new DonationController
func NewDonationController(donationService services.DonationService, logger zerolog.Logger) *DonationController {
	return &DonationController{
		donationService: donationService,
		logger:          logger,
	}
}

// Create records a donation by the caller. Amounts are in minor units.
// @Summary Donate
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDonationRequest true "Donation"
// @Success 201 {object} dto.Response[dto.DonationResponse]
// @Router /donations [post]
func (c *DonationController) Create(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	var req dto.CreateDonationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	donation, err := c.donationService.Create(ctx.Request.Context(), session, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewResponse(donation, "Thank you for your donation"))
}

// Mine lists the caller's donations
// @Summary My donations
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Page[dto.DonationResponse]]
// @Router /donations/mine [get]
func (c *DonationController) Mine(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	page, err := c.donationService.Mine(ctx.Request.Context(), session, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// List shows every donation
// @Summary List donations
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Page[dto.DonationResponse]]
// @Router /donations [get]
func (c *DonationController) List(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	page, err := c.donationService.List(ctx.Request.Context(), session, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Summary totals donations per currency
// @Summary Donation summary
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[models.DonationSummary]
// @Router /donations/summary [get]
func (c *DonationController) Summary(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	summary, err := c.donationService.Summary(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(summary, ""))
}
