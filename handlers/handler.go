package handlers

import (
	"context"
	"log/slog"
	"time"

	"redirect-analytics/aggregator"
	"redirect-analytics/config"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "analytics-service"

// EventSink receives every accepted code after it has been counted.
type EventSink interface {
	Enqueue(code string)
}

// Pinger checks an optional downstream dependency for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type nopSink struct{}

func (nopSink) Enqueue(string) {}

// Options wires a Handler. Aggregator and Logger are required.
type Options struct {
	Aggregator     *aggregator.EventAggregator
	Sink           EventSink
	Ready          Pinger
	Logger         *slog.Logger
	BodyLimitBytes int64
	StartedAt      time.Time
}

// Handler serves the HTTP surface over an injected aggregator.
type Handler struct {
	agg       *aggregator.EventAggregator
	sink      EventSink
	ready     Pinger
	logger    *slog.Logger
	bodyLimit int64
	startedAt time.Time
}

func New(opts Options) *Handler {
	h := &Handler{
		agg:       opts.Aggregator,
		sink:      opts.Sink,
		ready:     opts.Ready,
		logger:    opts.Logger,
		bodyLimit: opts.BodyLimitBytes,
		startedAt: opts.StartedAt,
	}
	if h.sink == nil {
		h.sink = nopSink{}
	}
	if h.bodyLimit <= 0 {
		h.bodyLimit = config.DefaultBodyLimitBytes
	}
	if h.startedAt.IsZero() {
		h.startedAt = time.Now()
	}
	return h
}
