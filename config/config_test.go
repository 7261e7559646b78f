package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.BodyLimitBytes != DefaultBodyLimitBytes {
		t.Fatalf("Expected body limit %d, got %d", DefaultBodyLimitBytes, cfg.BodyLimitBytes)
	}
	if cfg.Port != DefaultPort {
		t.Fatalf("Expected port %d, got %d", DefaultPort, cfg.Port)
	}
	if cfg.LogLevel != "info" || cfg.Verbose() {
		t.Fatalf("Expected non-verbose info level, got %q", cfg.LogLevel)
	}
	if cfg.PublishingEnabled() {
		t.Fatal("Expected publishing to be disabled without REDIS_ADDR")
	}
	if cfg.RateLimitEnabled {
		t.Fatal("Expected rate limiting to be disabled by default")
	}
	if cfg.RedisChannel != DefaultRedisChannel {
		t.Fatalf("Expected channel %q, got %q", DefaultRedisChannel, cfg.RedisChannel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BODY_LIMIT_BYTES", "2048")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.BodyLimitBytes != 2048 {
		t.Fatalf("Expected body limit 2048, got %d", cfg.BodyLimitBytes)
	}
	if cfg.Addr() != "0.0.0.0:9090" {
		t.Fatalf("Expected addr 0.0.0.0:9090, got %s", cfg.Addr())
	}
	if !cfg.Verbose() {
		t.Fatal("Expected debug level to enable verbose diagnostics")
	}
	if !cfg.RateLimitEnabled || cfg.RateLimitWindow != 30*time.Second {
		t.Fatalf("Expected rate limit 30s window, got enabled=%v window=%s", cfg.RateLimitEnabled, cfg.RateLimitWindow)
	}
	if !cfg.PublishingEnabled() {
		t.Fatal("Expected publishing to be enabled with REDIS_ADDR")
	}
}

func TestLoadRejectsInvalidBodyLimit(t *testing.T) {
	for _, raw := range []string{"0", "-1", "abc", "1.5"} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("BODY_LIMIT_BYTES", raw)
			if _, err := Load(""); err == nil {
				t.Fatalf("Expected error for BODY_LIMIT_BYTES=%q", raw)
			}
		})
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := Load(""); err == nil {
		t.Fatal("Expected error for unknown log level")
	}
}

func TestLoadAcceptsEveryLoggerLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "warning", "error"} {
		t.Run(level, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", level)
			if _, err := Load(""); err != nil {
				t.Fatalf("Expected LOG_LEVEL=%s to load, got %v", level, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := "port: 7070\nbody-limit-bytes: 1024\nredis-channel: custom\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 7070 || cfg.BodyLimitBytes != 1024 || cfg.RedisChannel != "custom" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.ConfigPath != path {
		t.Fatalf("Expected ConfigPath %q, got %q", path, cfg.ConfigPath)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Fatalf("Expected default port, got %d", cfg.Port)
	}
}
