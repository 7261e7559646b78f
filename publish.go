package main

import (
	"context"
	"fmt"
	"log/slog"

	"redirect-analytics/batcher"
	"redirect-analytics/config"
	"redirect-analytics/handlers"
	"redirect-analytics/pubsub"
	"redirect-analytics/queue"
)

// newEventSink builds the Redis fan-out when REDIS_ADDR is set. The returned
// cleanup drains the batcher, then the worker, then closes Redis; call it
// after the HTTP server has stopped.
func newEventSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (handlers.EventSink, handlers.Pinger, func(), error) {
	if !cfg.PublishingEnabled() {
		logger.Info("publishing_disabled")
		return nil, nil, func() {}, nil
	}

	store, err := pubsub.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	worker := queue.NewWorker(cfg.PublishQueueSize, logger)
	// Not tied to ctx: queued flushes still go out while draining.
	worker.StartWorker(context.Background())

	ps := pubsub.NewPubSub(store, cfg.RedisChannel, logger)
	b := batcher.New(cfg.PublishBatchSize, cfg.PublishInterval, pubsub.NewPublisher(ps, worker, logger).PublishFlush)
	b.Start()

	logger.Info("publishing_enabled",
		"redis_addr", cfg.RedisAddr,
		"channel", cfg.RedisChannel,
		"interval", cfg.PublishInterval,
		"batch_size", cfg.PublishBatchSize,
	)

	cleanup := func() {
		b.Stop()
		worker.Stop()
		if err := store.Close(); err != nil {
			logger.Warn("redis_close_failed", "error", err)
		}
	}
	return b, store, cleanup, nil
}
