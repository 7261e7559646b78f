package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Subscribe calls handler for every message of event on the channel. It
// returns once Redis has confirmed the subscription; close the returned
// Closer, or cancel ctx, to stop receiving.
func (ps *PubSub) Subscribe(ctx context.Context, event string, handler HandlerFunc) (io.Closer, error) {
	sub := ps.redisStore.Client.Subscribe(ctx, ps.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", ps.channel, err)
	}

	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					ps.logger.Warn("decode_error", "channel", msg.Channel, "error", err)
					continue
				}
				if env.Event != event {
					continue
				}
				handler(ctx, env.Data)
			}
		}
	}()
	return sub, nil
}
