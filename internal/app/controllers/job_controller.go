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

// JobController handles job posting endpoints
type JobController struct {
	jobService services.JobService
	logger     zerolog.Logger
}

// NewJobController creates a new JobController
func NewJobController(jobService services.JobService, logger zerolog.Logger) *JobController {
	return &JobController{
		jobService: jobService,
		logger:     logger,
	}
}

// Create publishes a new job posting
// @Summary Create job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JobRequest true "Job details"
// @Success 201 {object} dto.Response[dto.JobResponse]
// @Failure 403 {object} dto.ErrorResponse "Only alumni and admins post jobs"
// @Router /jobs [post]
func (c *JobController) Create(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	var req dto.JobRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	job, err := c.jobService.Create(ctx.Request.Context(), session, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewResponse(job, "Job created successfully"))
}

// List returns jobs matching the optional filters
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param search query string false "Title, company or description substring"
// @Param jobType query string false "full_time, part_time, internship or contract"
// @Param location query string false "Location substring"
// @Param remote query bool false "Remote only"
// @Param status query string false "open or closed"
// @Success 200 {object} dto.Response[dto.Page[dto.JobResponse]]
// @Router /jobs [get]
func (c *JobController) List(ctx *gin.Context) {
	var query dto.JobListQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	page, err := c.jobService.List(ctx.Request.Context(), &query, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Get returns one job
// @Summary Get job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (c *JobController) Get(ctx *gin.Context) {
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	job, err := c.jobService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(job, ""))
}

// Update replaces a job's details
// @Summary Update job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Param request body dto.JobRequest true "Job details"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Router /jobs/{id} [put]
func (c *JobController) Update(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.JobRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	job, err := c.jobService.Update(ctx.Request.Context(), session, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(job, "Job updated successfully"))
}

// Delete removes a job and its applications
// @Summary Delete job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.MessageResponse]
// @Router /jobs/{id} [delete]
func (c *JobController) Delete(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.jobService.Delete(ctx.Request.Context(), session, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(dto.MessageResponse{Message: "Job deleted successfully"}, ""))
}

// MyPostings lists the caller's own postings
// @Summary My job postings
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Page[dto.JobResponse]]
// @Router /jobs/my-postings [get]
func (c *JobController) MyPostings(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}

	page, err := c.jobService.MyPostings(ctx.Request.Context(), session, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Close stops a job from accepting applications
// @Summary Close job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Router /jobs/{id}/close [patch]
func (c *JobController) Close(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	job, err := c.jobService.Close(ctx.Request.Context(), session, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(job, "Job closed"))
}

// Apply submits an application to an open job
// @Summary Apply to job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Param request body dto.ApplyJobRequest false "Cover letter and resume"
// @Success 201 {object} dto.Response[models.JobApplication]
// @Failure 409 {object} dto.ErrorResponse "Already applied or job closed"
// @Router /jobs/{id}/apply [post]
func (c *JobController) Apply(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ApplyJobRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	application, err := c.jobService.Apply(ctx.Request.Context(), session, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewResponse(application, "Application submitted"))
}

// Applications lists applications for a job
// @Summary Job applications
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID" Format(uuid)
// @Success 200 {object} dto.Response[dto.Page[dto.ApplicationResponse]]
// @Router /jobs/{id}/applications [get]
func (c *JobController) Applications(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	page, err := c.jobService.Applications(ctx.Request.Context(), session, id, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Statistics reports job totals by status and type
// @Summary Job statistics
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[models.JobStatistics]
// @Router /jobs/statistics [get]
func (c *JobController) Statistics(ctx *gin.Context) {
	stats, err := c.jobService.Statistics(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(stats, ""))
}
