package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/xresolve/internal/api/handler"
	mw "github.com/iconidentify/xresolve/internal/api/middleware"
)

// Handlers groups the route handlers. History may be nil when history is
// disabled.
type Handlers struct {
	Resolve *handler.ResolveHandler
	Thread  *handler.ThreadHandler
	History *handler.HistoryHandler
	Health  *handler.HealthHandler
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(h Handlers, apiKey string, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(mw.CORS)

	// Health endpoints (no auth)
	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)

	// API v1 (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		r.Get("/resolve", h.Resolve.Resolve)

		r.Get("/threads/{conversationID}/count", h.Thread.Count)
		r.Get("/threads/{conversationID}/{position}", h.Thread.Position)

		if h.History != nil {
			r.Get("/history", h.History.List)
		}
	})

	return r
}
