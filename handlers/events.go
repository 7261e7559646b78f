package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"redirect-analytics/middlewares"
	"redirect-analytics/models"
	"redirect-analytics/utils"
)

// IngestEventHandler validates a redirect event, counts its code and answers
// 202. The count is not rolled back if the client goes away afterwards.
func (h *Handler) IngestEventHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middlewares.RequestIDFrom(ctx)

	evt, errResp, status := h.decodeEvent(w, r)
	if errResp != nil {
		h.logger.InfoContext(ctx, rejectionEvent(errResp.Error),
			"request_id", requestID,
			"error", errResp.Error,
			"field", errResp.Field,
			"reason", errResp.Reason,
		)
		writeError(w, status, *errResp)
		return
	}

	count := h.agg.Increment(evt.Code)
	h.logger.InfoContext(ctx, "event_accepted",
		"request_id", requestID,
		"code", evt.Code,
		"count", count,
	)
	h.sink.Enqueue(evt.Code)

	utils.WriteJSON(w, http.StatusAccepted, models.AcceptedResponse{Accepted: true, Code: evt.Code})
}

func (h *Handler) decodeEvent(w http.ResponseWriter, r *http.Request) (models.RedirectEvent, *models.ErrorResponse, int) {
	var evt models.RedirectEvent
	r.Body = http.MaxBytesReader(w, r.Body, h.bodyLimit)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&evt); err != nil {
		errResp, status := decodeFailure(err)
		return evt, errResp, status
	}
	// A single JSON value only.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return evt, &models.ErrorResponse{Error: models.ErrPayloadTooLarge}, http.StatusRequestEntityTooLarge
		}
		return evt, &models.ErrorResponse{Error: models.ErrInvalidJSON}, http.StatusBadRequest
	}

	if err := evt.Validate(); err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return evt, &models.ErrorResponse{Error: models.ErrValidation, Field: ve.Field, Reason: ve.Reason}, http.StatusUnprocessableEntity
		}
		return evt, &models.ErrorResponse{Error: models.ErrValidation}, http.StatusUnprocessableEntity
	}
	return evt, nil, 0
}

func decodeFailure(err error) (*models.ErrorResponse, int) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &models.ErrorResponse{Error: models.ErrPayloadTooLarge}, http.StatusRequestEntityTooLarge
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &models.ErrorResponse{Error: models.ErrValidation, Field: field, Reason: "wrong_type"}, http.StatusUnprocessableEntity
	}
	return &models.ErrorResponse{Error: models.ErrInvalidJSON}, http.StatusBadRequest
}

func rejectionEvent(tag string) string {
	if tag == models.ErrValidation {
		return "validation_failed"
	}
	return tag
}
