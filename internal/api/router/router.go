package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scamtrap-ai/scamtrap/internal/engage"
	httpmiddleware "github.com/scamtrap-ai/scamtrap/internal/http/middleware"
	"github.com/scamtrap-ai/scamtrap/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	EngageHandler      *engage.Handler
	APIKey             string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests per second and burst for the per-IP limiter. Zero disables it.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: health checks and metrics scraping.
	r.Group(func(public chi.Router) {
		public.Get("/", handleRoot)
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Authenticated honeypot surface.
	r.Group(func(protected chi.Router) {
		protected.Use(httpmiddleware.APIKey(cfg.APIKey))
		if cfg.RateLimitPerSecond > 0 {
			protected.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}
		protected.Post("/honey-pot-entry", cfg.EngageHandler.Entry)
		// Alias kept for callers that mount the service behind a chat gateway.
		protected.Post("/api/chat", cfg.EngageHandler.Entry)
		protected.Get("/sessions/{sessionID}", cfg.EngageHandler.Session)
	})

	return r
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, map[string]string{"service": "scamtrap", "status": "running"})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, map[string]string{"status": "ok"})
}

func writeStatus(w http.ResponseWriter, payload map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
