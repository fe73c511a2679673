package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/app/repositories/memory"
	"github.com/alnet/mentorbridge/internal/app/services"
	"github.com/alnet/mentorbridge/internal/middleware"
	"github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/alnet/mentorbridge/internal/pkg/filestorage"
	"github.com/alnet/mentorbridge/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = validation.RegisterWithGin()
}

type fixture struct {
	t      *testing.T
	repos  *repositories.Repositories
	jwt    *auth.JWTService
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	repos := memory.NewRepositories()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "controller-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "mentorbridge.test",
	})
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	lgr := zerolog.Nop()
	publisher := &events.RecordingPublisher{}
	eventCtl := NewEventController(services.NewEventService(repos, publisher, lgr), lgr)
	analyticsCtl := NewAnalyticsController(services.NewAnalyticsService(repos, lgr), lgr)
	profileCtl := NewProfileController(services.NewProfileService(repos, storage, nil, lgr), lgr)

	router := gin.New()
	api := router.Group("", middleware.NewAuthMiddleware(jwtService, repos.Users).JWTAuth())
	api.GET("/events", eventCtl.List)
	api.POST("/events", eventCtl.Create)
	api.POST("/events/:id/register", eventCtl.Register)
	api.POST("/analytics/export", analyticsCtl.Export)
	api.GET("/analytics/users", analyticsCtl.Users)
	api.POST("/profiles/:userId/photo", profileCtl.UploadPhoto)

	return &fixture{t: t, repos: repos, jwt: jwtService, router: router}
}

func (f *fixture) user(role models.Role) (*models.User, string) {
	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.New(),
		Email:     uuid.NewString() + "@mentorbridge.test",
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(f.t, f.repos.Users.CreateWithProfile(context.Background(), user, &models.Profile{
		UserID: user.ID, Role: role, FirstName: "Test", LastName: string(role), CreatedAt: now, UpdatedAt: now,
	}))
	pair, err := f.jwt.GenerateTokenPair(user)
	require.NoError(f.t, err)
	return user, pair.AccessToken
}

func (f *fixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestEventListRejectsMalformedUpcoming(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(models.RoleStudent)

	w := f.do(http.MethodGet, "/events?upcoming=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/events?upcoming=true", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventRegistrationHonoursCapacity(t *testing.T) {
	f := newFixture(t)
	_, organizer := f.user(models.RoleAlumni)
	_, first := f.user(models.RoleStudent)
	_, second := f.user(models.RoleStudent)

	capacity := 1
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	w := f.do(http.MethodPost, "/events", organizer, dto.EventRequest{
		Title:    "Alumni mixer",
		StartsAt: start,
		EndsAt:   start.Add(2 * time.Hour),
		Capacity: &capacity,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.Response[dto.EventResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := "/events/" + created.Data.ID.String() + "/register"

	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, path, first, nil).Code)
	assert.Equal(t, http.StatusConflict, f.do(http.MethodPost, path, second, nil).Code)
}

func TestEventCreateRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	_, organizer := f.user(models.RoleAlumni)

	start := time.Now().Add(time.Hour).UTC()
	w := f.do(http.MethodPost, "/events", organizer, dto.EventRequest{
		Title:    "Backwards",
		StartsAt: start,
		EndsAt:   start.Add(-time.Minute),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsExportUsesBodyRange(t *testing.T) {
	f := newFixture(t)
	_, admin := f.user(models.RoleAdmin)

	w := f.do(http.MethodPost, "/analytics/export?from=2024-01-01", admin, dto.DateRangeQuery{From: "2025-01-01", To: "2025-01-31"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="analytics_20250101_20250131.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "section,metric,value")
}

func TestAnalyticsRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	_, admin := f.user(models.RoleAdmin)

	w := f.do(http.MethodGet, "/analytics/users?from=2025-02-01&to=2025-01-01", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadPhotoRequiresFile(t *testing.T) {
	f := newFixture(t)
	user, token := f.user(models.RoleAlumni)

	w := f.do(http.MethodPost, "/profiles/"+user.ID.String()+"/photo", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "photo file is required")
}
