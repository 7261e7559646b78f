package middlewares

import (
	"net/http"
	"time"
)

// timedResponseWriter records the first status written downstream and stamps
// X-Response-Time when the headers go out.
type timedResponseWriter struct {
	http.ResponseWriter
	start       time.Time
	status      int
	wroteHeader bool
}

// wrapResponseWriter reuses w when an outer stage already wrapped it, so every
// stage observes the same status.
func wrapResponseWriter(w http.ResponseWriter, start time.Time) *timedResponseWriter {
	if tw, ok := w.(*timedResponseWriter); ok {
		return tw
	}
	return &timedResponseWriter{ResponseWriter: w, start: start}
}

func (t *timedResponseWriter) WriteHeader(statusCode int) {
	if !t.wroteHeader {
		elapsed := time.Since(t.start)
		t.ResponseWriter.Header().Set("X-Response-Time", elapsed.String())
		t.status = statusCode
		t.wroteHeader = true
	}
	t.ResponseWriter.WriteHeader(statusCode)
}

func (t *timedResponseWriter) Write(b []byte) (int, error) {
	if !t.wroteHeader {
		t.WriteHeader(http.StatusOK)
	}
	return t.ResponseWriter.Write(b)
}

// Status is the status code sent so far, or 0 when nothing was written.
func (t *timedResponseWriter) Status() int {
	return t.status
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (t *timedResponseWriter) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}

// ResponseTimeMiddleware sets X-Response-Time on every response.
func ResponseTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(wrapResponseWriter(w, time.Now()), r)
	})
}
