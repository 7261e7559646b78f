package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"redirect-analytics/aggregator"
	"redirect-analytics/config"
	"redirect-analytics/handlers"
	middleware "redirect-analytics/middlewares"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "analytics-service",
		Short:        "Count redirect events per code and serve live stats",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file (yaml, json or toml)")
	return cmd
}

func run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	logger, closeLog, err := middleware.NewLogger(middleware.LoggerOptions{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	}, stdout)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer closeLog()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			Release:          version,
			AttachStacktrace: true,
		}); err != nil {
			logger.Warn("sentry_init_failed", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	sink, ready, cleanupSink, err := newEventSink(ctx, cfg, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(reg)

	var limiter *middleware.LimiterStore
	if cfg.RateLimitEnabled {
		limiter = middleware.NewLimiterStore(cfg.RateLimitMax, cfg.RateLimitWindow)
		limiter.StartJanitor(ctx)
	}

	h := handlers.New(handlers.Options{
		Aggregator:     aggregator.New(),
		Sink:           sink,
		Ready:          ready,
		Logger:         logger,
		BodyLimitBytes: cfg.BodyLimitBytes,
		StartedAt:      time.Now(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg, h, logger, metrics, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server_started",
			"addr", srv.Addr,
			"version", version,
			"body_limit_bytes", cfg.BodyLimitBytes,
			"rate_limit", cfg.RateLimitEnabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting_down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	cleanupSink()
	logger.Info("server_stopped")
	return err
}
