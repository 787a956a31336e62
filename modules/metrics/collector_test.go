package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) (*Collector, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCollector()
	c.startedAt = now
	c.now = func() time.Time { return now }
	return c, &now
}

func TestRecordRequestAndSummary(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordRequest("POST", "/api/ai/generate-code", 200, 120*time.Millisecond)
	c.RecordRequest("GET", "/api/health", 200, 5*time.Millisecond)
	c.RecordRequest("POST", "/api/ai/generate-code", 502, 300*time.Millisecond)

	s := c.Summary(0)
	assert.Equal(t, 3, s.RequestCount)
	assert.Equal(t, 1, s.ErrorCount)
	assert.InDelta(t, 1.0/3.0, s.ErrorRate, 1e-9)
	assert.Equal(t, 2, s.StatusCounts[200])
	assert.Equal(t, 1, s.StatusCounts[502])
	assert.InDelta(t, (120.0+5.0+300.0)/3.0, s.LatencyAvgMS, 1e-9)
}

func TestRecordGenerationTotals(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordGeneration("vue", 800, 0.033, 2*time.Second, true, true)
	c.RecordGeneration("vue", 600, 0.024, time.Second, false, true)
	c.RecordGeneration("react", 0, 0, time.Second, false, false)

	s := c.Summary(0)
	assert.Equal(t, 3, s.GenerationCount)
	assert.Equal(t, 2, s.Frameworks["vue"])
	assert.Equal(t, 1, s.Frameworks["react"])
	assert.Equal(t, 1400, s.TotalTokens)
	assert.InDelta(t, 0.057, s.TotalCostUSD, 1e-9)
}

func TestSummaryWindowExcludesOldSamples(t *testing.T) {
	c, now := newTestCollector(t)

	c.RecordRequest("GET", "/old", 500, time.Millisecond)
	*now = now.Add(10 * time.Minute)
	c.RecordRequest("GET", "/new", 200, time.Millisecond)

	s := c.Summary(5 * time.Minute)
	assert.Equal(t, 1, s.RequestCount)
	assert.Equal(t, 0, s.ErrorCount)
}

func TestRequestRingBounded(t *testing.T) {
	c, _ := newTestCollector(t)

	for i := 0; i < maxRequestSamples+250; i++ {
		c.RecordRequest("GET", "/", 200, time.Millisecond)
	}

	assert.Len(t, c.requests, maxRequestSamples)
	assert.Equal(t, maxRequestSamples, c.Summary(0).RequestCount)
}

func TestHealthThresholds(t *testing.T) {
	tests := []struct {
		name   string
		errors int
		total  int
		want   string
	}{
		{"no traffic", 0, 0, "healthy"},
		{"clean traffic", 0, 20, "healthy"},
		{"just below degraded", 1, 20, "healthy"},      // 5%
		{"degraded", 3, 20, "degraded"},                // 15%
		{"exactly at degraded", 2, 20, "degraded"},     // 10%
		{"unhealthy", 12, 20, "unhealthy"},             // 60%
		{"exactly at unhealthy", 10, 20, "unhealthy"},  // 50%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCollector(t)
			for i := 0; i < tt.errors; i++ {
				c.RecordRequest("POST", "/api/ai/generate-code", 502, time.Millisecond)
			}
			for i := 0; i < tt.total-tt.errors; i++ {
				c.RecordRequest("POST", "/api/ai/generate-code", 200, time.Millisecond)
			}

			h := c.Health()
			assert.Equal(t, tt.want, h.Status)
			assert.Equal(t, tt.total, h.RequestCount)
		})
	}
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 0.0, percentile(nil, 50))

	samples := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, 6.0, percentile(samples, 50))
	assert.Equal(t, 10.0, percentile(samples, 95))
	assert.Equal(t, 10.0, percentile(samples, 99))
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	c, _ := newTestCollector(t)

	handler := Middleware(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/ai/generate-code", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Len(t, c.requests, 1)
	assert.Equal(t, http.StatusTeapot, c.requests[0].Status)
	assert.Equal(t, "/api/ai/generate-code", c.requests[0].Path)
}

func TestMiddlewareDefaultsTo200(t *testing.T) {
	c, _ := newTestCollector(t)

	handler := Middleware(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok")) // implicit 200
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, c.requests, 1)
	assert.Equal(t, http.StatusOK, c.requests[0].Status)
}

func TestHealthHandlerStatusCodes(t *testing.T) {
	c, _ := newTestCollector(t)
	h := NewHandler(c)

	// Healthy with no traffic.
	rec := httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unhealthy flips to 503.
	for i := 0; i < 10; i++ {
		c.RecordRequest("POST", "/x", 500, time.Millisecond)
	}
	rec = httptest.NewRecorder()
	h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
