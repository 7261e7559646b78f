package middlewares

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.Level(-8)

// LoggerOptions selects the format, verbosity and optional rotating file of
// the service logger.
type LoggerOptions struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the service logger writing to out and, when opts.File is
// set, to a lumberjack-rotated file. The returned close func releases the file.
func NewLogger(opts LoggerOptions, out io.Writer) (*slog.Logger, func() error, error) {
	closeFn := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), os.ModePerm); err != nil {
			return nil, closeFn, err
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(out, rotating)
		closeFn = rotating.Close
	}

	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}

	var h slog.Handler
	if opts.Format == "text" {
		h = slog.NewTextHandler(out, handlerOpts)
	} else {
		h = slog.NewJSONHandler(out, handlerOpts)
	}
	return slog.New(h), closeFn, nil
}

// AccessLogMiddleware emits exactly one "request" record per request, on every
// exit path including panics. Status is "n/a" when the handler panicked before
// writing a response.
func AccessLogMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrapResponseWriter(w, start)
			returned := false

			defer func() {
				var status any = "n/a"
				if s := rw.Status(); s != 0 {
					status = s
				} else if returned {
					// net/http answers 200 for a handler that wrote nothing.
					status = http.StatusOK
				}
				emitAccessLog(r.Context(), logger, r, status, time.Since(start))
			}()

			next.ServeHTTP(rw, r)
			returned = true
		})
	}
}

func emitAccessLog(ctx context.Context, logger *slog.Logger, r *http.Request, status any, elapsed time.Duration) {
	defer func() { _ = recover() }()
	logger.LogAttrs(ctx, slog.LevelInfo, "request",
		slog.String("request_id", RequestIDFrom(ctx)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("status", status),
		slog.Int64("ms", elapsed.Milliseconds()),
		slog.String("ip", getIPAddress(r)),
	)
}

// getIPAddress returns the first X-Forwarded-For hop, else the remote host.
func getIPAddress(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
