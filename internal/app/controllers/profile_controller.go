package controllers

import (
	"net/http"

	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/services"
	"github.com/alnet/mentorbridge/internal/middleware"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ProfileController handles profile, directory and account administration endpoints
type ProfileController struct {
	profileService services.ProfileService
	logger         zerolog.Logger
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService services.ProfileService, logger zerolog.Logger) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		logger:         logger,
	}
}

// GetProfile retrieves a profile by user ID
// @Summary Get profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID" Format(uuid)
// @Success 200 {object} dto.Response[models.Profile]
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /profiles/{userId} [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	userID, ok := middleware.ParseUUIDParam(ctx, "userId")
	if !ok {
		return
	}

	profile, err := c.profileService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(profile, ""))
}

// UpdateProfile applies a partial update; only the fields present in the body change
// @Summary Update profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID" Format(uuid)
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.Response[models.Profile]
// @Failure 403 {object} dto.ErrorResponse "Not the profile owner"
// @Router /profiles/{userId} [patch]
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.ParseUUIDParam(ctx, "userId")
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.profileService.UpdateProfile(ctx.Request.Context(), session, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(profile, "Profile updated successfully"))
}

// UploadPhoto stores a new profile photo from the multipart field "photo"
// @Summary Upload profile photo
// @Tags profiles
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID" Format(uuid)
// @Param photo formData file true "JPEG, PNG or WebP image up to 5MB"
// @Success 200 {object} dto.Response[dto.PhotoUploadResponse]
// @Router /profiles/{userId}/photo [post]
func (c *ProfileController) UploadPhoto(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.ParseUUIDParam(ctx, "userId")
	if !ok {
		return
	}

	file, err := ctx.FormFile("photo")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("photo file is required").
			WithDetails(map[string]interface{}{"field": "photo"}))
		return
	}

	resp, err := c.profileService.UploadPhoto(ctx.Request.Context(), session, userID, file)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Profile photo upload failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(resp, "Profile photo uploaded successfully"))
}

// SearchAlumni filters alumni profiles; every given filter must match
// @Summary Search alumni
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param company query string false "Company substring"
// @Param position query string false "Position substring"
// @Param location query string false "Location, city or country substring"
// @Param skills query string false "Comma separated skills, any of"
// @Param industry query string false "Industry substring"
// @Param yearsOfExperience query int false "Minimum years of experience"
// @Param graduationYear query int false "Graduation year"
// @Param sortBy query string false "Sort field"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.Response[dto.Page[models.Profile]]
// @Router /profiles/alumni/search [get]
func (c *ProfileController) SearchAlumni(ctx *gin.Context) {
	var query dto.AlumniSearchQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	page, err := c.profileService.SearchAlumni(ctx.Request.Context(), &query, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// Directory lists all alumni profiles
// @Summary Alumni directory
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[dto.Page[models.Profile]]
// @Router /profiles/alumni/directory [get]
func (c *ProfileController) Directory(ctx *gin.Context) {
	page, err := c.profileService.Directory(ctx.Request.Context(), helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewResponse(page, ""))
}

// BulkUpload creates accounts from the CSV in the multipart field "file"
// @Summary Bulk create users from CSV
// @Tags profiles
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} dto.Response[dto.BulkUploadResult]
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /profiles/bulk-upload [post]
func (c *ProfileController) BulkUpload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("CSV file is required").
			WithDetails(map[string]interface{}{"field": "file"}))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	result, err := c.profileService.BulkUpload(ctx.Request.Context(), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("filename", fileHeader.Filename).
		Int("created", result.Created).
		Int("failed", result.Failed).
		Msg("Bulk upload processed")
	ctx.JSON(http.StatusOK, dto.NewResponse(result, ""))
}

// SetUserStatus enables or disables an account
// @Summary Enable or disable a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID" Format(uuid)
// @Param request body dto.UpdateUserStatusRequest true "New status"
// @Success 200 {object} dto.Response[dto.MessageResponse]
// @Router /users/{id}/status [patch]
func (c *ProfileController) SetUserStatus(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.profileService.SetUserStatus(ctx.Request.Context(), session, userID, *req.IsActive); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "User disabled"
	if *req.IsActive {
		message = "User enabled"
	}
	ctx.JSON(http.StatusOK, dto.NewResponse(dto.MessageResponse{Message: message}, ""))
}
