package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eduworld/portal/internal/middleware"
	"github.com/eduworld/portal/internal/model"
	"github.com/eduworld/portal/pkg/logger"
)

// RouterConfig carries the handlers and limits the router is built from.
type RouterConfig struct {
	Health *HealthHandler
	Chat   *ChatHandler
	Auth   *AuthHandler
	Logger *logger.Logger

	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	AuthRateLimit      int
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Health endpoints (no auth required)
	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/forms/{mode}", cfg.Auth.Form)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(cfg.AuthRateLimit, cfg.RateLimitWindow))
			r.Post("/auth/register", cfg.Auth.Register)
			r.Post("/auth/login", cfg.Auth.Login)
		})

		r.With(middleware.Auth(cfg.JWTSecret)).Get("/me", cfg.Auth.Me)

		r.Route("/chat", func(r chi.Router) {
			r.With(
				middleware.Auth(cfg.JWTSecret),
				middleware.RequireRole(model.RoleFaculty),
			).Get("/knowledge", cfg.Chat.Knowledge)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", cfg.Chat.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.Chat.Get)
					r.Delete("/", cfg.Chat.Delete)

					r.Post("/open", cfg.Chat.Open)
					r.Post("/minimize", cfg.Chat.Minimize)
					r.Post("/restore", cfg.Chat.Restore)
					r.Post("/close", cfg.Chat.Close)
					r.Post("/reset", cfg.Chat.Reset)

					r.Put("/draft", cfg.Chat.Draft)
					r.Post("/draft/submit", cfg.Chat.SubmitDraft)
					r.Post("/messages", cfg.Chat.Send)
					r.Post("/messages/{messageID}/feedback", cfg.Chat.Feedback)
				})
			})
		})
	})

	return r
}
