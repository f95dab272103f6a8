// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvTileSize    = "TILEFILTER_TILE_SIZE"
	EnvOutputDir   = "TILEFILTER_OUTPUT_DIR"
	EnvLiveBuffer  = "TILEFILTER_LIVE_BUFFER"
	EnvRedisAddr   = "TILEFILTER_REDIS_ADDR"
	EnvRedisStream = "TILEFILTER_REDIS_STREAM"
	EnvLogLevel    = "TILEFILTER_LOG_LEVEL"
)

// Defaults.
const (
	DefaultTileSize    = 50
	DefaultOutputDir   = "output"
	DefaultLiveBuffer  = 64
	DefaultRedisStream = "tilefilter:tiles"
	DefaultLogLevel    = "info"
)

// Config holds settings shared by the binaries.
type Config struct {
	TileSize    int
	OutputDir   string
	LiveBuffer  int
	RedisAddr   string
	RedisStream string
	LogLevel    string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TileSize:    DefaultTileSize,
		OutputDir:   DefaultOutputDir,
		LiveBuffer:  DefaultLiveBuffer,
		RedisStream: DefaultRedisStream,
		LogLevel:    DefaultLogLevel,
	}
}

// Load returns Default overridden by any variables set in the environment.
func Load() (Config, error) {
	cfg := Default()

	var err error
	if cfg.TileSize, err = getEnvInt(EnvTileSize, cfg.TileSize); err != nil {
		return cfg, err
	}
	if cfg.LiveBuffer, err = getEnvInt(EnvLiveBuffer, cfg.LiveBuffer); err != nil {
		return cfg, err
	}
	cfg.OutputDir = getEnv(EnvOutputDir, cfg.OutputDir)
	cfg.RedisAddr = getEnv(EnvRedisAddr, cfg.RedisAddr)
	cfg.RedisStream = getEnv(EnvRedisStream, cfg.RedisStream)
	cfg.LogLevel = strings.ToLower(getEnv(EnvLogLevel, cfg.LogLevel))

	return cfg, cfg.Validate()
}

// Validate checks that numeric settings are positive and the log level is
// known.
func (c Config) Validate() error {
	if c.TileSize <= 0 {
		return fmt.Errorf("%s: tile size %d must be positive", EnvTileSize, c.TileSize)
	}
	if c.LiveBuffer <= 0 {
		return fmt.Errorf("%s: buffer %d must be positive", EnvLiveBuffer, c.LiveBuffer)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// SlogLevel returns the configured level, falling back to info.
func (c Config) SlogLevel() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels. An empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not an integer", key, val)
	}
	return i, nil
}
