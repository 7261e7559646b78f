package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// EventRedirectCounts carries a batcher.Flush of accepted redirect events.
const EventRedirectCounts = "redirect_counts"

// Envelope is the wire format of every message on the channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HandlerFunc receives the data of each matching event.
type HandlerFunc func(ctx context.Context, data json.RawMessage)

// PubSub publishes and subscribes to named events on one Redis channel.
type PubSub struct {
	redisStore *RedisStore
	channel    string
	logger     *slog.Logger
}

func NewPubSub(redisStore *RedisStore, channel string, logger *slog.Logger) *PubSub {
	return &PubSub{redisStore: redisStore, channel: channel, logger: logger}
}

// Channel is the Redis channel used by ps.
func (ps *PubSub) Channel() string { return ps.channel }

// Publish an event
func (ps *PubSub) Publish(ctx context.Context, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", event, err)
	}
	payload, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}

	if err := ps.redisStore.Client.Publish(ctx, ps.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing %s to %s: %w", event, ps.channel, err)
	}
	return nil
}
