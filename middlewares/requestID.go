package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-Id"

const maxRequestIDLen = 128

type contextKey string

const requestContextKey contextKey = "request_context"

// RequestContext is attached to every request by RequestIDMiddleware and is read-only
// afterwards.
type RequestContext struct {
	ID        string
	StartedAt time.Time
}

// ResolveRequestID returns the trimmed inbound id when it is non-empty and at
// most 128 characters long, and a new random UUID otherwise.
func ResolveRequestID(raw string) string {
	id := strings.TrimSpace(raw)
	if id != "" && utf8.RuneCountInString(id) <= maxRequestIDLen {
		return id
	}
	return uuid.NewString()
}

// RequestIDMiddleware assigns the correlation id, stores it in the request
// context and echoes it on the response before any downstream stage can write.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := RequestContext{
			ID:        ResolveRequestID(r.Header.Get(RequestIDHeader)),
			StartedAt: time.Now(),
		}
		w.Header().Set(RequestIDHeader, rc.ID)

		ctx := context.WithValue(r.Context(), requestContextKey, rc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestContextFrom returns the RequestContext stored by RequestIDMiddleware.
func RequestContextFrom(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(RequestContext)
	return rc, ok
}

// RequestIDFrom returns the correlation id of ctx, or "" outside the chain.
func RequestIDFrom(ctx context.Context) string {
	rc, _ := RequestContextFrom(ctx)
	return rc.ID
}
