package middlewares

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"redirect-analytics/models"
	"redirect-analytics/utils"
)

// SentryMiddleware reports panics to Sentry and re-panics so RecoverMiddleware
// still answers the request. Without an initialised client it only forwards.
func SentryMiddleware(next http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
	return h.Handle(sentryScope(next))
}

// sentryScope tags the request's Sentry scope with the correlation id.
func sentryScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.Scope().SetTag("request_id", RequestIDFrom(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

// RecoverMiddleware is the single catch-all boundary for unexpected failures.
// It logs the panic with its stack and answers 500 internal_error, adding the
// panic text as detail when verbose is set.
func RecoverMiddleware(logger *slog.Logger, verbose bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := panicError(rec)
				logger.LogAttrs(r.Context(), slog.LevelError, "unhandled_error",
					slog.String("request_id", RequestIDFrom(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
					slog.String("stack", string(debug.Stack())),
				)

				if sw, ok := w.(interface{ Status() int }); ok && sw.Status() != 0 {
					// Headers are gone; nothing useful can be sent.
					return
				}
				body := models.ErrorResponse{Error: models.ErrInternal}
				if verbose {
					body.Detail = err.Error()
				}
				utils.WriteJSON(w, http.StatusInternalServerError, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func panicError(rec any) error {
	switch v := rec.(type) {
	case error:
		return v
	case string:
		return errors.New(v)
	default:
		return fmt.Errorf("%v", v)
	}
}
