package middlewares

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is served by promhttp and excluded from measurement.
const MetricsPath = "/metrics"

// Metrics holds the HTTP collectors of the service.
type Metrics struct {
	gatherer prometheus.Gatherer
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the HTTP collectors on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests handled.",
		}, []string{"method", "route", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status_code"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts and times every request except scrapes of MetricsPath.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == MetricsPath {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := wrapResponseWriter(w, start)
		status := http.StatusInternalServerError
		defer func() {
			if s := rw.Status(); s != 0 {
				status = s
			}
			labels := prometheus.Labels{
				"method":      r.Method,
				"route":       RouteLabel(r.URL.Path),
				"status_code": strconv.Itoa(status),
			}
			m.requests.With(labels).Inc()
			m.duration.With(labels).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(rw, r)
		status = http.StatusOK
	})
}

// RouteLabel collapses a request path onto its route template so per-code
// paths do not explode label cardinality.
func RouteLabel(path string) string {
	switch path {
	case "/health", "/ready", "/events", "/stats":
		return path
	}
	if strings.HasPrefix(path, "/stats/") {
		return "/stats/{code}"
	}
	return "unknown"
}
