package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRequestClamps(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, Limit: 20}, NewPageRequest(0, 0))
	assert.Equal(t, PageRequest{Page: 3, Limit: 100}, NewPageRequest(3, 500))
	assert.Equal(t, 40, NewPageRequest(3, 20).Offset())
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  PageRequest
	}{
		{"", PageRequest{Page: 1, Limit: 20}},
		{"?page=2&limit=5", PageRequest{Page: 2, Limit: 5}},
		{"?page=2&size=7", PageRequest{Page: 2, Limit: 7}},
		{"?page=abc&limit=-1", PageRequest{Page: 1, Limit: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/x"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePaginationParams(c))
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(20, NewPageRequest(2, 20))
	assert.Equal(t, 1, info.Pages)
	assert.Equal(t, 2, info.Page)

	assert.Equal(t, 3, NewPaginationInfo(41, NewPageRequest(1, 20)).Pages)
	assert.Equal(t, 0, NewPaginationInfo(0, NewPageRequest(1, 20)).Pages)
}

func TestParseDateRange(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	from, to, err := ParseDateRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, now, to)
	assert.Equal(t, now.Add(-DefaultAnalyticsWindow), from)

	from, to, err = ParseDateRange("2025-03-01", "2025-03-02", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 2, 23, 59, 59, 999999999, time.UTC), to)

	from, _, err = ParseDateRange("2025-03-01T10:00:00+02:00", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), from)

	_, _, err = ParseDateRange("yesterday", "", now)
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2025, 2, 27, 15, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 1, 0, 0, 0, time.UTC)

	days := DaysBetween(from, to)
	require.Len(t, days, 4)
	assert.Equal(t, time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC), days[0])
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), days[3])
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Hour, ParseDuration("2h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("bogus", time.Minute))
}
