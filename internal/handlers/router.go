package handlers

import (
	"net/http"
	"time"

	"github.com/aawaaz/complaint-desk/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig carries everything the HTTP surface needs
type RouterConfig struct {
	Complaints     *ComplaintHandler
	Auth           *AuthHandler
	Health         *HealthHandler
	Tokens         middleware.TokenParser
	Limiter        middleware.Limiter
	RateLimitRPM   int
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter builds the chi router with global middleware and all API routes
func NewRouter(cfg RouterConfig) http.Handler {
	sugar := cfg.Logger.Sugar()
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Metrics())
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", cfg.Health.Check)
		r.Get("/health/ready", cfg.Health.Ready)

		r.Group(func(r chi.Router) {
			if cfg.Limiter != nil {
				r.Use(middleware.RateLimit(cfg.Limiter, cfg.RateLimitRPM, sugar))
			}
			r.Use(middleware.Authenticate(cfg.Tokens, sugar))

			r.Route("/auth", cfg.Auth.Routes)
			r.Route("/complaints", cfg.Complaints.Routes)
		})
	})

	return r
}
