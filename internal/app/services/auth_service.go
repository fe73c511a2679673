package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appAuth "github.com/alnet/mentorbridge/internal/app/auth"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/alnet/mentorbridge/internal/pkg/email"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/alnet/mentorbridge/internal/pkg/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthService handles authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, session appAuth.Session, refreshToken string) error
	Me(ctx context.Context, session appAuth.Session) (*dto.UserResponse, error)
}

type authServiceImpl struct {
	userRepo     repositories.UserRepository
	tokenRepo    repositories.TokenRepository
	profileRepo  repositories.ProfileRepository
	jwtService   *auth.JWTService
	emailService email.EmailService
	publisher    events.Publisher
	logger       zerolog.Logger
	now          clock
}

// NewAuthService creates a new AuthService
func NewAuthService(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	publisher events.Publisher,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:     repos.Users,
		tokenRepo:    repos.Tokens,
		profileRepo:  repos.Profiles,
		jwtService:   jwtService,
		emailService: emailService,
		publisher:    publisher,
		logger:       logger,
		now:          utcNow,
	}
}

// Register creates a student or alumni account together with its profile
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	emailAddr := validation.NormalizeEmail(req.Email)
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return nil, apperrors.ErrInvalidEmail
	}
	if !req.Role.SelfRegistrable() {
		return nil, apperrors.ErrRoleNotAllowed
	}
	if !auth.IsStrongPassword(req.Password) {
		return nil, apperrors.ErrWeakPassword
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: hashedPassword,
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &models.Profile{
		UserID:             user.ID,
		Role:               user.Role,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		GraduationYear:     req.GraduationYear,
		DepartmentOrCourse: strings.TrimSpace(req.DepartmentOrCourse),
		Skills:             []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, err
	}

	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID.String()).Str("role", string(user.Role)).Msg("User registered")
	publish(ctx, s.publisher, s.logger, events.UserRegistered, map[string]interface{}{
		"userId": user.ID,
		"role":   user.Role,
	})

	go func(to, name string) {
		if err := s.emailService.SendWelcomeEmail(to, name); err != nil {
			s.logger.Warn().Err(err).Str("email", to).Msg("Failed to send welcome email")
		}
	}(user.Email, profile.FullName())

	return &dto.AuthResponse{Token: *token, User: dto.NewUserResponse(user, profile)}, nil
}

// Login authenticates a user by email and password
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("Failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: *token, User: dto.NewUserResponse(user, profile)}, nil
}

// RefreshToken exchanges a refresh token for a new pair. The presented token is
// revoked in the same step, so every refresh token works exactly once.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if !stored.Usable(s.now()) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}
	if err := s.tokenRepo.RotateToken(ctx, refreshToken, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: tokenResponse(pair), User: dto.NewUserResponse(user, profile)}, nil
}

// Logout revokes one refresh token, or all of the caller's tokens when none is given
func (s *authServiceImpl) Logout(ctx context.Context, session appAuth.Session, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return s.tokenRepo.RevokeAllUserTokens(ctx, session.UserID)
	}

	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	// Another user's token is reported as unknown.
	if stored.UserID != session.UserID {
		return apperrors.ErrTokenNotFound
	}
	return s.tokenRepo.RevokeToken(ctx, refreshToken)
}

// Me returns the caller's account and profile
func (s *authServiceImpl) Me(ctx context.Context, session appAuth.Session) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user, profile)
	return &resp, nil
}

// issueTokens creates and persists a token pair for user
func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	token := tokenResponse(pair)
	return &token, nil
}

func tokenResponse(pair *auth.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}
}
