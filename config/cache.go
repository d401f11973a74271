package config

import (
	"strings"
	"time"
)

// RedisConfig contains Redis configuration. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:""`
	Username string `env:"USERNAME" envDefault:""`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	TLS      bool   `env:"TLS"      envDefault:"false"`
}

// Sanitize applies guardrails to Redis configuration values.
func (r *RedisConfig) Sanitize() {
	r.Addr = strings.TrimSpace(r.Addr)
	if r.DB < 0 {
		r.DB = 0
	}
}

// Enabled reports whether a Redis server is configured.
func (r *RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// CacheConfig contains cache configuration (Redis-based).
type CacheConfig struct {
	// OptionsTTL is the TTL for cached OPTIONS documents.
	OptionsTTL time.Duration `env:"CACHE_OPTIONS_TTL" envDefault:"10m"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.OptionsTTL < time.Second {
		c.OptionsTTL = time.Second
	}
}
