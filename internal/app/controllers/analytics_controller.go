package controllers

import (
	"net/http"

	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/services"
	"github.com/alnet/mentorbridge/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AnalyticsController serves the admin analytics endpoints.
// Every route takes from and to as RFC3339 timestamps or YYYY-MM-DD dates.
type AnalyticsController struct {
	analyticsService services.AnalyticsService
	logger           zerolog.Logger
}

// NewAnalyticsController creates a new AnalyticsController
func NewAnalyticsController(analyticsService services.AnalyticsService, logger zerolog.Logger) *AnalyticsController {
	return &AnalyticsController{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

func (c *AnalyticsController) dateRange(ctx *gin.Context) (dto.DateRange, bool) {
	var query dto.DateRangeQuery
	if !middleware.BindQuery(ctx, &query) {
		return dto.DateRange{}, false
	}
	r, err := c.analyticsService.ResolveRange(&query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return dto.DateRange{}, false
	}
	return r, true
}

// Users reports account totals
// @Summary User analytics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param from query string false "Range start"
// @Param to query string false "Range end"
// @Success 200 {object} dto.Response[dto.UserAnalytics]
// @Router /analytics/users [get]
func (c *AnalyticsController) Users(ctx *gin.Context) {
	r, ok := c.dateRange(ctx)
	if !ok {
		return
	}

	result, err := c.analyticsService.Users(ctx.Request.Context(), r)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(result, ""))
}

// Engagement reports messaging and connection activity
// @Summary Engagement analytics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.EngagementAnalytics]
// @Router /analytics/engagement [get]
func (c *AnalyticsController) Engagement(ctx *gin.Context) {
	r, ok := c.dateRange(ctx)
	if !ok {
		return
	}

	result, err := c.analyticsService.Engagement(ctx.Request.Context(), r)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(result, ""))
}

// Platform reports content totals
// @Summary Platform analytics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.PlatformAnalytics]
// @Router /analytics/platform [get]
func (c *AnalyticsController) Platform(ctx *gin.Context) {
	result, err := c.analyticsService.Platform(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(result, ""))
}

// Dashboard combines users, engagement and platform analytics
// @Summary Analytics dashboard
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Dashboard]
// @Router /analytics/dashboard [get]
func (c *AnalyticsController) Dashboard(ctx *gin.Context) {
	r, ok := c.dateRange(ctx)
	if !ok {
		return
	}

	result, err := c.analyticsService.Dashboard(ctx.Request.Context(), r)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(result, ""))
}

// Report is the dashboard stamped with its range and generation time
// @Summary Analytics report
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Report]
// @Router /analytics/report [get]
func (c *AnalyticsController) Report(ctx *gin.Context) {
	r, ok := c.dateRange(ctx)
	if !ok {
		return
	}

	result, err := c.analyticsService.Report(ctx.Request.Context(), r)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(result, ""))
}

// Export downloads the report as CSV. The range may come from the query string
// or a JSON body; the body wins.
// @Summary Export analytics
// @Tags analytics
// @Accept json
// @Produce text/csv
// @Security BearerAuth
// @Param request body dto.DateRangeQuery false "Range"
// @Success 200 {file} file "CSV report"
// @Router /analytics/export [post]
func (c *AnalyticsController) Export(ctx *gin.Context) {
	var query dto.DateRangeQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &query) {
		return
	}

	r, err := c.analyticsService.ResolveRange(&query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	data, filename, err := c.analyticsService.ExportCSV(ctx.Request.Context(), r)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("filename", filename).Int("bytes", len(data)).Msg("Analytics exported")
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
