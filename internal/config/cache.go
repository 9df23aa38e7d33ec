package config

import "time"

// CacheConfig defines settings for the admin read cache.  When Enabled is
// false or no Redis client is configured, caching is disabled.  TTL bounds
// the lifetime of a cached response; entries are also invalidated as a
// group whenever a mutation succeeds (see middleware.NewRedisCache).
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* environment variables.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "catalog:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
