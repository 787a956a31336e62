package metrics

import (
	"encoding/json"
	"net/http"
	"time"
)

type Handler struct {
	collector *Collector
}

func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

// GetMetrics returns the aggregate summary. An optional ?window=5m query
// restricts the report to a trailing window.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	window := time.Duration(0)
	if raw := r.URL.Query().Get("window"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			window = parsed
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.collector.Summary(window))
}

// GetHealth reports the coarse service state for load balancer probes.
// Degraded still answers 200; only unhealthy flips to 503.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	health := h.collector.Health()

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}
