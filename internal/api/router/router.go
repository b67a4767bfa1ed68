package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/waterbot/internal/admin"
	httpmiddleware "github.com/wolfman30/waterbot/internal/http/middleware"
	"github.com/wolfman30/waterbot/internal/messenger"
	"github.com/wolfman30/waterbot/pkg/logging"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	Webhook         *messenger.WebhookHandler
	AdminHandler    *admin.Handler
	AdminAuthSecret string
	MetricsHandler  http.Handler
	HealthChecks    map[string]HealthCheck

	// AdminRateLimit is requests per second per IP on /admin; 0 disables it.
	AdminRateLimit float64
	AdminBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	// Public endpoints (webhook, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Webhook != nil {
			public.Route("/callback", func(cb chi.Router) {
				cb.Get("/", cfg.Webhook.HandleVerification)
				cb.Post("/", cfg.Webhook.HandleCallback)
				cb.Get("/me", cfg.Webhook.HandleMe)
			})
		}
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" && cfg.AdminHandler != nil {
		r.Route("/admin", func(adm chi.Router) {
			if cfg.AdminRateLimit > 0 {
				adm.Use(httpmiddleware.RateLimit(cfg.AdminRateLimit, max(cfg.AdminBurst, 1)))
			}
			adm.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			cfg.AdminHandler.RegisterRoutes(adm)
		})
	}

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		response := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				response["status"] = "degraded"
				response[name] = err.Error()
				continue
			}
			response[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}
}
