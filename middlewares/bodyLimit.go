package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"redirect-analytics/models"
	"redirect-analytics/utils"
)

// CheckContentLength judges a declared Content-Length against limit. An absent
// or zero length proceeds; the body reader enforces the limit for chunked
// uploads.
func CheckContentLength(raw string, present bool, limit int64) Outcome {
	if !present {
		return Proceed
	}
	s := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && isUnsignedDigits(s) {
			return Reject(http.StatusRequestEntityTooLarge, models.ErrPayloadTooLarge)
		}
		return Reject(http.StatusBadRequest, models.ErrInvalidContentLength)
	}
	if n < 0 {
		return Reject(http.StatusBadRequest, models.ErrInvalidContentLength)
	}
	if n > limit {
		return Reject(http.StatusRequestEntityTooLarge, models.ErrPayloadTooLarge)
	}
	return Proceed
}

func isUnsignedDigits(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// declaredContentLength returns the raw Content-Length header, if any.
func declaredContentLength(r *http.Request) (string, bool) {
	if vals := r.Header.Values("Content-Length"); len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}

// BodyLimitMiddleware rejects requests whose declared body exceeds limit
// before any body byte is read.
func BodyLimitMiddleware(limit int64, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, present := declaredContentLength(r)
			out := CheckContentLength(raw, present, limit)
			if !out.Continue {
				logger.LogAttrs(r.Context(), slog.LevelInfo, out.Tag,
					slog.String("request_id", RequestIDFrom(r.Context())),
					slog.String("content_length", raw),
					slog.Int64("limit", limit),
				)
				utils.WriteJSON(w, out.Status, models.ErrorResponse{Error: out.Tag})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
