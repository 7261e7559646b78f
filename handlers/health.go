package handlers

import (
	"context"
	"net/http"
	"time"

	"redirect-analytics/middlewares"
	"redirect-analytics/models"
	"redirect-analytics/utils"
)

const readyTimeout = 2 * time.Second

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Service: ServiceName})
}

// ReadyHandler reports ready unless the configured dependency fails its ping.
func (h *Handler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := h.ready.Ping(ctx); err != nil {
			h.logger.Warn("not_ready",
				"request_id", middlewares.RequestIDFrom(r.Context()),
				"error", err,
			)
			utils.WriteJSON(w, http.StatusServiceUnavailable, models.ReadyResponse{Status: "not_ready", Reason: "redis_unreachable"})
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, models.ReadyResponse{Status: "ready"})
}
