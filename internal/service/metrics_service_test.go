package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordCourseMutation("setup")
	m.RecordCourseMutation("setup")
	m.RecordExportJob("pdf", "FINISHED")
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `course_mutations_total{operation="setup"} 2`)
	assert.Contains(t, body, `export_jobs_total{format="pdf",status="FINISHED"} 1`)
	assert.Contains(t, body, "cache_hit_ratio 0.5")
}

func TestMetricsServiceObservesRequests(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/course/current", http.StatusOK, 5*time.Millisecond)

	assert.Contains(t, scrape(t, m), `http_requests_total{method="GET",path="/course/current",status="200"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordCourseMutation("archive")
	m.ObserveDBQuery("find_active", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
