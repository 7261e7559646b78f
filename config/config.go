package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultBodyLimitBytes = 16 * 1024
	DefaultPort           = 8000
	DefaultRedisChannel   = "redirect-events"
)

// Config is the runtime configuration of the analytics service.
type Config struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	BodyLimitBytes int64  `mapstructure:"body-limit-bytes"`

	LogLevel      string `mapstructure:"log-level"`
	LogFormat     string `mapstructure:"log-format"`
	LogFile       string `mapstructure:"log-file"`
	LogMaxSizeMB  int    `mapstructure:"log-max-size-mb"`
	LogMaxBackups int    `mapstructure:"log-max-backups"`
	LogMaxAgeDays int    `mapstructure:"log-max-age-days"`

	RateLimitEnabled bool          `mapstructure:"rate-limit-enabled"`
	RateLimitMax     int           `mapstructure:"rate-limit-max"`
	RateLimitWindow  time.Duration `mapstructure:"rate-limit-window"`

	RedisAddr     string `mapstructure:"redis-addr"`
	RedisPassword string `mapstructure:"redis-password"`
	RedisDB       int    `mapstructure:"redis-db"`
	RedisChannel  string `mapstructure:"redis-channel"`

	PublishInterval  time.Duration `mapstructure:"publish-interval"`
	PublishBatchSize int           `mapstructure:"publish-batch-size"`
	PublishQueueSize int           `mapstructure:"publish-queue-size"`

	SentryDSN         string `mapstructure:"sentry-dsn"`
	SentryEnvironment string `mapstructure:"sentry-environment"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`

	ConfigPath string `mapstructure:"-"`
}

// Load reads configuration from defaults, an optional file and the
// environment, in increasing order of precedence. Environment variables use
// the upper-cased key with dashes replaced by underscores (BODY_LIMIT_BYTES).
func Load(configPath string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("body-limit-bytes", DefaultBodyLimitBytes)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "json")
	v.SetDefault("log-file", "")
	v.SetDefault("log-max-size-mb", 10)
	v.SetDefault("log-max-backups", 3)
	v.SetDefault("log-max-age-days", 28)
	v.SetDefault("rate-limit-enabled", false)
	v.SetDefault("rate-limit-max", 60)
	v.SetDefault("rate-limit-window", time.Minute)
	v.SetDefault("redis-addr", "")
	v.SetDefault("redis-password", "")
	v.SetDefault("redis-db", 0)
	v.SetDefault("redis-channel", DefaultRedisChannel)
	v.SetDefault("publish-interval", time.Second)
	v.SetDefault("publish-batch-size", 500)
	v.SetDefault("publish-queue-size", 64)
	v.SetDefault("sentry-dsn", "")
	v.SetDefault("sentry-environment", "development")
	v.SetDefault("shutdown-timeout", 10*time.Second)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	// Checked before Unmarshal so a bad value gets a precise message instead
	// of a decoder error.
	if raw := strings.TrimSpace(v.GetString("body-limit-bytes")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return cfg, errors.New("invalid BODY_LIMIT_BYTES: must be a positive integer")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges that the decoder cannot express.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.BodyLimitBytes <= 0 {
		return errors.New("invalid BODY_LIMIT_BYTES: must be a positive integer")
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q, must be json or text", c.LogFormat)
	}
	if c.RateLimitEnabled {
		if c.RateLimitMax <= 0 {
			return errors.New("RATE_LIMIT_MAX must be > 0")
		}
		if c.RateLimitWindow <= 0 {
			return errors.New("RATE_LIMIT_WINDOW must be > 0")
		}
	}
	if c.RedisAddr != "" {
		if strings.TrimSpace(c.RedisChannel) == "" {
			return errors.New("REDIS_CHANNEL is required when REDIS_ADDR is set")
		}
		if c.PublishInterval <= 0 {
			return errors.New("PUBLISH_INTERVAL must be > 0")
		}
		if c.PublishQueueSize <= 0 {
			return errors.New("PUBLISH_QUEUE_SIZE must be > 0")
		}
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Verbose reports whether unexpected-failure responses carry diagnostic detail.
func (c Config) Verbose() bool {
	return c.LogLevel == "debug" || c.LogLevel == "trace"
}

// PublishingEnabled reports whether accepted events are fanned out to Redis.
func (c Config) PublishingEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}
