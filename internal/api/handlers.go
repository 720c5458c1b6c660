package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/planner"
	"github.com/starford/dagaz/internal/reconcile"
	"github.com/starford/dagaz/internal/repository"
)

// Handler holds API route handlers.
type Handler struct {
	rec  *reconcile.Reconciler
	runs *repository.RunRepository
}

// NewHandler creates a new Handler.
func NewHandler(rec *reconcile.Reconciler, runs *repository.RunRepository) *Handler {
	return &Handler{rec: rec, runs: runs}
}

// PlannerCallback handles POST /api/planner/callback: the solver delivers
// its solution (or verdict) for a previously dispatched run here.
//
// An infeasible verdict is acknowledged with 200 so the solver does not
// retry; the run itself is marked failed. A callback that does not
// round-trip against the dispatched artifact is rejected with 400 and
// nothing is written.
func (h *Handler) PlannerCallback(w http.ResponseWriter, r *http.Request) {
	var cb planner.PlannerCallbackBody
	if err := decodeJSON(r, &cb); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed callback body"))
		return
	}
	if cb.SingletonID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("singletonId is required"))
		return
	}

	summary, err := h.rec.Process(r.Context(), &cb)
	if err != nil {
		slog.Error("callback processing failed",
			slog.String("singletonId", cb.SingletonID),
			slog.String("error", err.Error()))
		switch {
		case errors.Is(err, apperr.ErrNoAvailability):
			// Run marked failed; acknowledged so the solver stops retrying.
			writeJSON(w, http.StatusOK, map[string]string{"status": "failed"})
		case errors.Is(err, apperr.ErrIntegrity):
			writeJSON(w, http.StatusBadRequest, errorBody("callback does not match the dispatched run"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("run is being reconciled"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetRun handles GET /api/runs/{singletonId}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	singletonID := chi.URLParam(r, "singletonId")
	run, err := h.runs.Get(r.Context(), singletonID)
	if err != nil {
		if errors.Is(err, apperr.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("run not found"))
			return
		}
		slog.Error("get run failed", slog.String("singletonId", singletonID),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
