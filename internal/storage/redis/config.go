package redis

import (
	"time"

	"github.com/mcoot/letterstacks/internal/config"
)

// Config holds Redis connection and behavior settings
type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int

	// SessionTTL bounds how long an untouched session snapshot is kept.
	// Settings, scores and the dictionary never expire.
	SessionTTL time.Duration

	// Prefix namespaces every key; empty means "lstacks"
	Prefix string
}

// ConfigFrom converts the file/env storage section into a storage Config
func ConfigFrom(cfg config.RedisConfig) Config {
	return Config{
		URL:          cfg.URL,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		SessionTTL:   cfg.SessionTTL,
	}
}

// DefaultConfig returns the Redis section of the default server configuration
func DefaultConfig() Config {
	return ConfigFrom(config.Default().Storage.Redis)
}

func (c Config) prefix() string {
	if c.Prefix == "" {
		return defaultPrefix
	}
	return c.Prefix
}
