package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/jobs/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/jobs/1", "/jobs/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `mentorbridge_http_requests_total{method="GET",route="/jobs/:id",status="204"} 2`)
	assert.Contains(t, body, `mentorbridge_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}

func TestHandlerExposesDomainMetrics(t *testing.T) {
	m := New()
	m.RecordEvent("messages.sent")
	m.StreamSubscribers.Inc()

	body := scrape(t, m)
	assert.Contains(t, body, `mentorbridge_events_published_total{event="messages.sent"} 1`)
	assert.Contains(t, body, "mentorbridge_stream_subscribers 1")
	assert.Contains(t, body, "go_goroutines")
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
