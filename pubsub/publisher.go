package pubsub

import (
	"context"
	"log/slog"
	"time"

	"redirect-analytics/batcher"
	"redirect-analytics/queue"
	"redirect-analytics/utils"
)

const (
	publishTimeout      = 5 * time.Second
	publishRetries      = 3
	publishInitialDelay = 100 * time.Millisecond
)

// Publisher fans batcher flushes out to Redis on a bounded background worker,
// so request handling never waits on the network.
type Publisher struct {
	ps     *PubSub
	worker *queue.Worker
	logger *slog.Logger
}

func NewPublisher(ps *PubSub, worker *queue.Worker, logger *slog.Logger) *Publisher {
	return &Publisher{ps: ps, worker: worker, logger: logger}
}

// PublishFlush is a batcher.FlushFunc. A full queue drops the flush.
func (p *Publisher) PublishFlush(f batcher.Flush) {
	p.worker.Enqueue(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		err := utils.RetryWithExponentialBackoff(ctx, p.logger, func() error {
			return p.ps.Publish(ctx, EventRedirectCounts, f)
		}, publishRetries, publishInitialDelay)
		if err != nil {
			p.logger.Error("publish_failed",
				"channel", p.ps.Channel(),
				"events", f.Events,
				"codes", len(f.Counts),
				"error", err,
			)
			return
		}
		p.logger.Debug("flush_published", "channel", p.ps.Channel(), "events", f.Events, "codes", len(f.Counts))
	})
}
