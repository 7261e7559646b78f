package main

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"redirect-analytics/config"
	"redirect-analytics/handlers"
	middleware "redirect-analytics/middlewares"
)

// newRouter wires the routes and wraps the whole router, 404s included, in
// the request pipeline. limiter may be nil to disable rate limiting.
func newRouter(cfg config.Config, h *handlers.Handler, logger *slog.Logger, metrics *middleware.Metrics, limiter *middleware.LimiterStore) http.Handler {
	r := mux.NewRouter()

	var ingest http.Handler = http.HandlerFunc(h.IngestEventHandler)
	if limiter != nil {
		ingest = middleware.APIRateLimitMiddleware(limiter, logger)(ingest)
	}

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.ReadyHandler).Methods(http.MethodGet)
	r.Handle("/events", ingest).Methods(http.MethodPost)
	r.HandleFunc("/stats", h.StatsHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats/", h.CodeStatsHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats/{code}", h.CodeStatsHandler).Methods(http.MethodGet)
	r.Handle(middleware.MetricsPath, metrics.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(handlers.NotFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowedHandler)

	return middleware.Chain(r,
		middleware.RequestIDMiddleware,
		middleware.AccessLogMiddleware(logger),
		middleware.RecoverMiddleware(logger, cfg.Verbose()),
		middleware.SentryMiddleware,
		metrics.Middleware,
		middleware.BodyLimitMiddleware(cfg.BodyLimitBytes, logger),
	)
}
