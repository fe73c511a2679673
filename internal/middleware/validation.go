package middleware

import (
	"net/http"

	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BindJSON binds and validates the request body into obj.
// On failure it writes a 400 response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds and validates the query string into obj
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		respondValidationError(c, err)
		return false
	}
	return true
}

// ParseUUIDParam reads a path parameter as a UUID, writing a 400 response when malformed
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid identifier").
			WithField(name).
			WithSeverity(dto.ErrorSeverityWarning)
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return uuid.Nil, false
	}
	return id, true
}

func respondValidationError(c *gin.Context, err error) {
	_ = c.Error(err)
	detail := dto.HandleValidationError(err).WithSeverity(dto.ErrorSeverityWarning)
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
