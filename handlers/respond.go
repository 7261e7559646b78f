package handlers

import (
	"net/http"

	"redirect-analytics/models"
	"redirect-analytics/utils"
)

func writeError(w http.ResponseWriter, status int, body models.ErrorResponse) {
	utils.WriteJSON(w, status, body)
}

// NotFoundHandler answers every unrouted path.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, models.ErrorResponse{Error: models.ErrNotFound})
}

// MethodNotAllowedHandler answers a known path requested with the wrong method.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: models.ErrMethodNotAllowed})
}
