package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache that fronts the
// public inventory reads (tables, rooms, menu). When Enabled is false or
// no Redis client is configured, caching is disabled. Prefix namespaces
// the keys so inventory writes can drop every cached page at once.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       strings.TrimSuffix(envStr("CACHE_PREFIX", "cache"), ":"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
