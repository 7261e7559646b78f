package utils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"strings"
	"time"
)

func isRecoverableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Check if the error is a network error that is temporary or due to a timeout.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "temporarily unavailable") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}

// RetryWithExponentialBackoff runs operation up to maxRetries times, doubling
// the delay after each recoverable failure. It stops early on success, on a
// non-recoverable error or when ctx is done.
func RetryWithExponentialBackoff(ctx context.Context, logger *slog.Logger, operation func() error, maxRetries int, initialDelay time.Duration) error {
	delay := initialDelay
	var err error

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if !isRecoverableError(err) {
			return err
		}
		if i == maxRetries-1 {
			break
		}

		// Apply jitter: add a random duration between 0 and half the current delay.
		wait := delay
		if half := int64(delay / 2); half > 0 {
			wait += time.Duration(rand.Int64N(half))
		}
		logger.Warn("retrying", "attempt", i+1, "error", err, "backoff", wait)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted after %d attempts: %w", i+1, ctx.Err())
		case <-time.After(wait):
		}
		delay *= 2 // Exponential backoff.
	}
	// After exhausting retries, return an error wrapping the last failure.
	logger.Error("retries_exhausted", "attempts", maxRetries, "error", err)
	return fmt.Errorf("operation failed after %d attempts: %w", maxRetries, err)
}
