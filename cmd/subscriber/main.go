package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"redirect-analytics/batcher"
	"redirect-analytics/config"
	middleware "redirect-analytics/middlewares"
	"redirect-analytics/pubsub"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:          "subscriber",
		Short:        "Tail the redirect-count flushes published by analytics-service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cfg.PublishingEnabled() {
				return errors.New("REDIS_ADDR is required")
			}

			logger, closeLog, err := middleware.NewLogger(middleware.LoggerOptions{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
			}, os.Stdout)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			redisStore, err := pubsub.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				return err
			}
			defer redisStore.Close()

			ps := pubsub.NewPubSub(redisStore, cfg.RedisChannel, logger)
			sub, err := ps.Subscribe(ctx, pubsub.EventRedirectCounts, func(_ context.Context, data json.RawMessage) {
				var f batcher.Flush
				if err := json.Unmarshal(data, &f); err != nil {
					logger.Warn("decode_error", "error", err)
					return
				}
				logger.Info("flush_received",
					"events", f.Events,
					"codes", len(f.Counts),
					"counts", f.Counts,
					"flushed_at", f.FlushedAt,
				)
			})
			if err != nil {
				return err
			}
			defer sub.Close()

			logger.Info("subscribed", "channel", ps.Channel())
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file (yaml, json or toml)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
