package middleware

import (
	"errors"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionContextKey = "session"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	userRepo   repositories.UserRepository
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, userRepo repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userRepo:   userRepo,
	}
}

// JWTAuth resolves the access token into a Session. The token comes from the
// Authorization header, or from the token query parameter for websocket clients
// that cannot set headers.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.Query("token")
		}

		if authHeader == "" {
			HandleAPIError(c, apperrors.NewUnauthenticatedError("Authentication required").
				WithDetails(map[string]interface{}{"reason": "Authorization header missing"}))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			HandleAPIError(c, apperrors.ErrTokenInvalid)
			return
		}

		c.Set(sessionContextKey, appAuth.Session{
			UserID: userID,
			Email:  claims.Email,
			Role:   models.Role(claims.Role),
		})
		c.Next()
	}
}

// ActiveAccountRequired rejects sessions whose account was disabled after the token was issued
func (m *AuthMiddleware) ActiveAccountRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			HandleAPIError(c, apperrors.NewUnauthenticatedError("Authentication required"))
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), session.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				HandleAPIError(c, apperrors.NewUnauthenticatedError("Account no longer exists"))
				return
			}
			HandleAPIError(c, err)
			return
		}

		if !user.IsActive {
			HandleAPIError(c, apperrors.ErrAccountDisabled)
			return
		}

		c.Next()
	}
}

// RoleRequired allows the request through only for the given roles
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			HandleAPIError(c, apperrors.NewUnauthenticatedError("Authentication required"))
			return
		}

		if !session.HasRole(roles...) {
			HandleAPIError(c, apperrors.NewForbiddenError("You don't have sufficient permissions for this operation"))
			return
		}

		c.Next()
	}
}

// CurrentSession returns the session stored by JWTAuth
func CurrentSession(c *gin.Context) (appAuth.Session, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return appAuth.Session{}, false
	}
	session, ok := value.(appAuth.Session)
	return session, ok
}

// RequireSession returns the session or writes a 401 response
func RequireSession(c *gin.Context) (appAuth.Session, bool) {
	session, ok := CurrentSession(c)
	if !ok {
		HandleAPIError(c, apperrors.NewUnauthenticatedError("Authentication required"))
	}
	return session, ok
}
