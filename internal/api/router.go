package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/reconcile"
	"github.com/starford/dagaz/internal/repository"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced; the health
// probe stays open either way. sseHandler, if non-nil, is mounted at
// GET /events inside the auth group.
func NewRouter(rec *reconcile.Reconciler, runs *repository.RunRepository, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(rec, runs)

	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		// Solver callback.
		r.Post("/planner/callback", h.PlannerCallback)

		// Run status.
		r.Get("/runs/{singletonId}", h.GetRun)

		// SSE endpoint (protected by same auth middleware).
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
