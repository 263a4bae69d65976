package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.  Cached
// entries are namespaced by a per-tenant version that every successful
// write bumps, so TTL only bounds how long stale versions linger.
type CacheConfig struct {
	Enabled      bool          `envconfig:"CACHE_ENABLED" default:"true"`
	Methods      []string      `envconfig:"CACHE_METHODS" default:"GET"`
	TTL          time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	Prefix       string        `envconfig:"CACHE_PREFIX" default:"cache"`
	MaxBodyBytes int           `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`
}

// MethodSet returns the cached methods upper-cased.
func (c CacheConfig) MethodSet() map[string]bool {
	m := make(map[string]bool, len(c.Methods))
	for _, p := range c.Methods {
		if p = strings.TrimSpace(strings.ToUpper(p)); p != "" {
			m[p] = true
		}
	}
	return m
}

func (c *CacheConfig) normalize() {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
}
