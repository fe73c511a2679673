package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories/memory"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body
}

func TestErrorDetailForMapsKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.ErrJobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeConflict},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{fmt.Errorf("%w: bad signature", apperrors.ErrTokenInvalid), http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled},
		{apperrors.ErrNotJobOwner, http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.ErrMessageEmpty, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.ErrRateLimited, http.StatusTooManyRequests, dto.ErrorCodeRateLimited},
		{fmt.Errorf("wrapped: %w", apperrors.ErrStartupNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, detail := ErrorDetailFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}
}

func TestErrorDetailForKeepsDomainMessage(t *testing.T) {
	_, detail := ErrorDetailFor(apperrors.ErrAlreadyApplied)
	assert.Equal(t, "already applied", detail.Message)

	_, detail = ErrorDetailFor(fmt.Errorf("pq: password authentication failed for user"))
	assert.Equal(t, "Internal server error", detail.Message)
}

func TestHandleAPIErrorDebugInfo(t *testing.T) {
	handler := func(c *gin.Context) { HandleAPIError(c, fmt.Errorf("dial tcp: connection refused")) }
	serve := func() dto.ErrorResponse {
		router := gin.New()
		router.GET("/boom", handler)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusInternalServerError, w.Code)
		return decodeError(t, w)
	}

	assert.Empty(t, serve().Error.DebugInfo)

	gin.SetMode(gin.DebugMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })
	body := serve()
	assert.Equal(t, "dial tcp: connection refused", body.Error.DebugInfo)
	assert.Equal(t, "Internal server error", body.Error.Message)
}

type authFixture struct {
	router *gin.Engine
	jwt    *auth.JWTService
	user   *models.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repos := memory.NewRepositories()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})

	user := &models.User{ID: uuid.New(), Email: "alum@example.com", Role: models.RoleAlumni, IsActive: true}
	require.NoError(t, repos.Users.CreateWithProfile(context.Background(), user, &models.Profile{FirstName: "Al"}))

	m := NewAuthMiddleware(jwtService, repos.Users)
	router := gin.New()
	protected := router.Group("", m.JWTAuth(), m.ActiveAccountRequired())
	protected.GET("/me", func(c *gin.Context) {
		session, ok := RequireSession(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": session.UserID.String(), "role": session.Role})
	})
	protected.GET("/admin", m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return &authFixture{router: router, jwt: jwtService, user: user}
}

func (f *authFixture) token(t *testing.T) string {
	t.Helper()
	pair, err := f.jwt.GenerateTokenPair(f.user)
	require.NoError(t, err)
	return pair.AccessToken
}

func (f *authFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthResolvesSession(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t))
	w := f.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), f.user.ID.String())
	assert.Contains(t, w.Body.String(), `"role":"alumni"`)
}

func TestJWTAuthAcceptsQueryToken(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/me?token="+f.token(t), nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w = f.do(req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)
}

func TestRoleRequiredForbidsOtherRoles(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t))
	w := f.do(req)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error.Code)
}

func TestActiveAccountRequired(t *testing.T) {
	repos := memory.NewRepositories()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "s", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	user := &models.User{ID: uuid.New(), Email: "off@example.com", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, repos.Users.CreateWithProfile(context.Background(), user, &models.Profile{}))
	require.NoError(t, repos.Users.SetActive(context.Background(), user.ID, false))

	m := NewAuthMiddleware(jwtService, repos.Users)
	router := gin.New()
	router.GET("/x", m.JWTAuth(), m.ActiveAccountRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })

	pair, err := jwtService.GenerateTokenPair(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeAccountDisabled, decodeError(t, w).Error.Code)
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	router := gin.New()
	router.POST("/auth/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// One token refills per second at 60/min.
	now = now.Add(time.Second)
	assert.True(t, rl.Allow("192.0.2.1"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("k"))
	}
}

func TestBindJSONWritesValidationError(t *testing.T) {
	router := gin.New()
	router.POST("/x", func(c *gin.Context) {
		var req dto.LoginRequest
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"email":"nope"}`)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decodeError(t, w).Error.Code)
}

func TestParseUUIDParam(t *testing.T) {
	router := gin.New()
	router.GET("/x/:id", func(c *gin.Context) {
		if _, ok := ParseUUIDParam(c, "id"); !ok {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x/123", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
