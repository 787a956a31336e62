package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	generatecode "github.com/a-elhaag/canvas-smith/modules/generate-code"
	"github.com/a-elhaag/canvas-smith/modules/common/config"
	"github.com/a-elhaag/canvas-smith/modules/common/openai"
	"github.com/a-elhaag/canvas-smith/modules/common/ratelimit"
	redisconn "github.com/a-elhaag/canvas-smith/modules/common/redis"
	"github.com/a-elhaag/canvas-smith/modules/metrics"

	"github.com/gorilla/mux"
)

func enableCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rootInfo(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"name":    cfg.AppName,
			"version": cfg.AppVersion,
			"status":  "running",
		})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Redis is optional; without it rate limiting is disabled.
	rdb := redisconn.Connect(cfg)

	collector := metrics.NewCollector()
	client := openai.NewClient(cfg)
	service := generatecode.NewService(cfg, client, collector)

	aiHandler := generatecode.NewHandler(service, cfg.MaxImageSize)
	metricsHandler := metrics.NewHandler(collector)

	r := mux.NewRouter()
	r.Use(enableCORS(cfg.CORSOrigins))
	r.Use(metrics.Middleware(collector))

	r.HandleFunc("/", rootInfo(cfg)).Methods("GET")
	r.HandleFunc("/api/health", metricsHandler.GetHealth).Methods("GET")
	r.HandleFunc("/api/metrics", metricsHandler.GetMetrics).Methods("GET")

	ai := r.PathPrefix("/api/ai").Subrouter()
	if cfg.RateLimitEnabled() && rdb != nil {
		limiter := ratelimit.NewLimiter(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow)
		ai.Use(limiter.Middleware)
		log.Printf("🚦 Rate limiting enabled: %d requests per %v", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	ai.HandleFunc("/generate-code", aiHandler.GenerateCode).Methods("POST")
	ai.HandleFunc("/health", aiHandler.GetHealth).Methods("GET")
	ai.HandleFunc("/config-check", aiHandler.GetConfigCheck).Methods("GET")
	ai.HandleFunc("/supported-frameworks", aiHandler.GetSupportedFrameworks).Methods("GET")

	if cfg.ServeFrontend {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
		log.Printf("📁 Serving static frontend from %s", cfg.StaticDir)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
	}

	log.Printf("🚀 %s v%s starting on port %s", cfg.AppName, cfg.AppVersion, cfg.Port)
	log.Printf("🎨 Generate code: POST http://localhost:%s/api/ai/generate-code", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/api/health", cfg.Port)
	log.Printf("📊 Metrics: http://localhost:%s/api/metrics", cfg.Port)

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
