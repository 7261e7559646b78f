package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"redirect-analytics/aggregator"
	"redirect-analytics/middlewares"
	"redirect-analytics/models"
	"redirect-analytics/utils"
)

// StatsHandler returns uptime, the number of tracked codes and the top 20.
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	top := h.agg.TopN(aggregator.DefaultTopN)
	tracked := h.agg.Size()

	h.logger.InfoContext(r.Context(), "stats_top",
		"request_id", middlewares.RequestIDFrom(r.Context()),
		"tracked_codes", tracked,
	)
	utils.WriteJSON(w, http.StatusOK, models.StatsResponse{
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		TrackedCodes:  tracked,
		Top:           top,
	})
}

// CodeStatsHandler returns the count of one code; unseen codes count 0.
func (h *Handler) CodeStatsHandler(w http.ResponseWriter, r *http.Request) {
	requestID := middlewares.RequestIDFrom(r.Context())
	code := mux.Vars(r)["code"]
	if !models.ValidCode(code) {
		h.logger.InfoContext(r.Context(), models.ErrInvalidCode,
			"request_id", requestID,
			"code_length", len([]rune(code)),
		)
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: models.ErrInvalidCode})
		return
	}

	count := h.agg.Get(code)
	h.logger.InfoContext(r.Context(), "stats_code",
		"request_id", requestID,
		"code", code,
		"count", count,
	)
	utils.WriteJSON(w, http.StatusOK, models.CodeStatsResponse{Code: code, Count: count})
}
