package metrics

import (
	"net/http"
	"sort"
	"sync"
	"time"
)

// Ring capacities. Old samples beyond these bounds are discarded so memory
// stays flat regardless of uptime.
const (
	maxRequestSamples    = 1000
	maxErrorSamples      = 100
	maxGenerationSamples = 500
)

// Health thresholds over the recent window.
const (
	healthWindow       = 5 * time.Minute
	degradedErrorRate  = 0.10
	unhealthyErrorRate = 0.50
)

type requestSample struct {
	At       time.Time `json:"at"`
	Method   string    `json:"method"`
	Path     string    `json:"path"`
	Status   int       `json:"status"`
	Duration float64   `json:"duration_ms"`
}

type errorSample struct {
	At      time.Time `json:"at"`
	Path    string    `json:"path"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
}

type generationSample struct {
	At            time.Time `json:"at"`
	Framework     string    `json:"framework"`
	TotalTokens   int       `json:"total_tokens"`
	CostUSD       float64   `json:"cost_usd"`
	Duration      float64   `json:"duration_ms"`
	HasAnimations bool      `json:"has_animations"`
	Success       bool      `json:"success"`
}

// Collector accumulates request, error and generation samples in bounded
// rings. All methods are safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	startedAt   time.Time
	requests    []requestSample
	errors      []errorSample
	generations []generationSample

	now func() time.Time // injectable for tests
}

func NewCollector() *Collector {
	return &Collector{
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// RecordRequest stores one completed HTTP request.
func (c *Collector) RecordRequest(method, path string, status int, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, requestSample{
		At:       c.now(),
		Method:   method,
		Path:     path,
		Status:   status,
		Duration: float64(elapsed.Milliseconds()),
	})
	if len(c.requests) > maxRequestSamples {
		c.requests = c.requests[len(c.requests)-maxRequestSamples:]
	}

	if status >= 400 {
		c.errors = append(c.errors, errorSample{
			At:      c.now(),
			Path:    path,
			Status:  status,
			Message: http.StatusText(status),
		})
		if len(c.errors) > maxErrorSamples {
			c.errors = c.errors[len(c.errors)-maxErrorSamples:]
		}
	}
}

// RecordGeneration stores the outcome of one generation pipeline run.
func (c *Collector) RecordGeneration(framework string, totalTokens int, costUSD float64, elapsed time.Duration, hasAnimations, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations = append(c.generations, generationSample{
		At:            c.now(),
		Framework:     framework,
		TotalTokens:   totalTokens,
		CostUSD:       costUSD,
		Duration:      float64(elapsed.Milliseconds()),
		HasAnimations: hasAnimations,
		Success:       success,
	})
	if len(c.generations) > maxGenerationSamples {
		c.generations = c.generations[len(c.generations)-maxGenerationSamples:]
	}
}

// Summary reports aggregates over the given trailing window. A zero window
// covers every retained sample.
type Summary struct {
	UptimeSeconds   float64        `json:"uptime_seconds"`
	RequestCount    int            `json:"request_count"`
	ErrorCount      int            `json:"error_count"`
	ErrorRate       float64        `json:"error_rate"`
	LatencyAvgMS    float64        `json:"latency_avg_ms"`
	LatencyP50MS    float64        `json:"latency_p50_ms"`
	LatencyP95MS    float64        `json:"latency_p95_ms"`
	LatencyP99MS    float64        `json:"latency_p99_ms"`
	GenerationCount int            `json:"generation_count"`
	Frameworks      map[string]int `json:"frameworks"`
	TotalTokens     int            `json:"total_tokens"`
	TotalCostUSD    float64        `json:"total_cost_usd"`
	StatusCounts    map[int]int    `json:"status_counts"`
}

func (c *Collector) Summary(window time.Duration) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cutoff := time.Time{}
	if window > 0 {
		cutoff = now.Add(-window)
	}

	s := Summary{
		UptimeSeconds: now.Sub(c.startedAt).Seconds(),
		Frameworks:    map[string]int{},
		StatusCounts:  map[int]int{},
	}

	var latencies []float64
	for _, r := range c.requests {
		if r.At.Before(cutoff) {
			continue
		}
		s.RequestCount++
		s.StatusCounts[r.Status]++
		latencies = append(latencies, r.Duration)
		if r.Status >= 400 {
			s.ErrorCount++
		}
	}
	if s.RequestCount > 0 {
		s.ErrorRate = float64(s.ErrorCount) / float64(s.RequestCount)

		var sum float64
		for _, l := range latencies {
			sum += l
		}
		s.LatencyAvgMS = sum / float64(len(latencies))
	}
	s.LatencyP50MS = percentile(latencies, 50)
	s.LatencyP95MS = percentile(latencies, 95)
	s.LatencyP99MS = percentile(latencies, 99)

	for _, g := range c.generations {
		if g.At.Before(cutoff) {
			continue
		}
		s.GenerationCount++
		s.Frameworks[g.Framework]++
		s.TotalTokens += g.TotalTokens
		s.TotalCostUSD += g.CostUSD
	}

	return s
}

// HealthStatus is the coarse service state derived from the recent error rate.
type HealthStatus struct {
	Status        string  `json:"status"` // healthy | degraded | unhealthy
	WindowSeconds float64 `json:"window_seconds"`
	RequestCount  int     `json:"request_count"`
	ErrorRate     float64 `json:"error_rate"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health classifies the last five minutes. With no recent traffic the
// service reports healthy; silence is not evidence of failure.
func (c *Collector) Health() HealthStatus {
	s := c.Summary(healthWindow)

	h := HealthStatus{
		Status:        "healthy",
		WindowSeconds: healthWindow.Seconds(),
		RequestCount:  s.RequestCount,
		ErrorRate:     s.ErrorRate,
		UptimeSeconds: s.UptimeSeconds,
	}
	if s.RequestCount == 0 {
		return h
	}

	switch {
	case s.ErrorRate >= unhealthyErrorRate:
		h.Status = "unhealthy"
	case s.ErrorRate >= degradedErrorRate:
		h.Status = "degraded"
	}
	return h
}

func percentile(samples []float64, p float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	idx := int(p / 100 * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
