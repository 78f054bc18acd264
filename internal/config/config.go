// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds the service settings.
type Config struct {
	LogLevel        slog.Level
	Port            string
	GRPCPort        string
	MMDBPath        string
	S3Bucket        string
	S3Key           string
	Watch           bool
	ShutdownTimeout time.Duration
}

// Load reads the configuration from environment variables, applying
// defaults, and validates it.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:        ParseLogLevel(os.Getenv("LOG_LEVEL")),
		Port:            getenv("PORT", "8080"),
		GRPCPort:        getenv("GRPC_PORT", "9090"),
		MMDBPath:        os.Getenv("MMDB_PATH"),
		S3Bucket:        os.Getenv("MMDB_S3_BUCKET"),
		S3Key:           os.Getenv("MMDB_S3_KEY"),
		ShutdownTimeout: 30 * time.Second,
	}

	if v := os.Getenv("MMDB_WATCH"); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MMDB_WATCH %q: %w", v, err)
		}
		cfg.Watch = watch
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that exactly one database source is configured.
func (c Config) Validate() error {
	hasS3 := c.S3Bucket != "" || c.S3Key != ""
	switch {
	case c.MMDBPath == "" && !hasS3:
		return errors.New("either MMDB_PATH or MMDB_S3_BUCKET and MMDB_S3_KEY are required")
	case c.MMDBPath != "" && hasS3:
		return errors.New("MMDB_PATH and MMDB_S3_* are mutually exclusive")
	case hasS3 && (c.S3Bucket == "" || c.S3Key == ""):
		return errors.New("MMDB_S3_BUCKET and MMDB_S3_KEY must both be set")
	case c.Watch && c.MMDBPath == "":
		return errors.New("MMDB_WATCH requires MMDB_PATH")
	}
	return nil
}

// GRPCEnabled reports whether the gRPC listener should be started.
func (c Config) GRPCEnabled() bool {
	return c.GRPCPort != "" && c.GRPCPort != "0"
}

// ParseLogLevel converts a string log level to slog.Level.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
