package dto

import (
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/google/uuid"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a self-registration request
type RegisterRequest struct {
	Email              string      `json:"email" binding:"required,email,max=254"`
	Password           string      `json:"password" binding:"required,strongpassword"`
	Role               models.Role `json:"role" binding:"required,selfrole"`
	FirstName          string      `json:"firstName" binding:"required,max=100"`
	LastName           string      `json:"lastName" binding:"required,max=100"`
	GraduationYear     *int        `json:"graduationYear" binding:"omitempty,min=1950,max=2100"`
	DepartmentOrCourse string      `json:"departmentOrCourse" binding:"max=200"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest revokes one refresh token, or all of the caller's tokens when empty
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// UserResponse represents account information together with the profile
type UserResponse struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Role        models.Role     `json:"role"`
	IsActive    bool            `json:"isActive"`
	LastLoginAt *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	Profile     *models.Profile `json:"profile,omitempty"`
}

// NewUserResponse maps a user and optional profile to a UserResponse
func NewUserResponse(user *models.User, profile *models.Profile) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		Profile:     profile,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// UpdateUserStatusRequest enables or disables an account
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
