package middlewares

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"redirect-analytics/models"
	"redirect-analytics/utils"
)

// LimiterStore keeps one token bucket per client key and forgets clients that
// stay idle longer than idleTTL.
type LimiterStore struct {
	mu           sync.Mutex
	entries      map[string]*limiterEntry
	limit        rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type LimiterOption func(*LimiterStore)

func WithIdleTTL(d time.Duration) LimiterOption {
	return func(s *LimiterStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) LimiterOption {
	return func(s *LimiterStore) { s.cleanupEvery = d }
}

// NewLimiterStore allows maxRequest requests per window per client, with a
// burst of maxRequest.
func NewLimiterStore(maxRequest int, window time.Duration, opts ...LimiterOption) *LimiterStore {
	s := &LimiterStore{
		entries:      make(map[string]*limiterEntry),
		limit:        rate.Limit(float64(maxRequest) / window.Seconds()),
		burst:        maxRequest,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	if window > s.idleTTL {
		s.idleTTL = window
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Burst is the per-client request ceiling advertised in X-RateLimit-Limit.
func (s *LimiterStore) Burst() int { return s.burst }

// Get returns the limiter of key, creating it on first use.
func (s *LimiterStore) Get(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.limit, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

// Len is the number of tracked clients.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops limiters idle for longer than idleTTL.
func (s *LimiterStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is cancelled.
func (s *LimiterStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// APIRateLimitMiddleware throttles each client to the store's rate and answers
// 429 rate_limited with Retry-After once the bucket is empty.
func APIRateLimitMiddleware(store *LimiterStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIPAddress(r)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(store.Burst()))

			res := store.Get(ip).Reserve()
			delay := res.Delay()
			if !res.OK() || delay > 0 {
				res.Cancel()
				retryAfter := int(math.Ceil(delay.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				logger.LogAttrs(r.Context(), slog.LevelInfo, models.ErrRateLimited,
					slog.String("request_id", RequestIDFrom(r.Context())),
					slog.String("ip", ip),
					slog.Int("retry_after", retryAfter),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				utils.WriteJSON(w, http.StatusTooManyRequests, models.ErrorResponse{Error: models.ErrRateLimited})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
