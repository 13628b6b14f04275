// Defines rate limit tiers and routing rules.

package ratelimit

import (
	"net/http"
	"time"
)

// Tier defines a rate limit tier. Buckets are keyed by client IP.
type Tier struct {
	Name    string
	Limiter *Limiter
}

// Config holds rate limiters for the rate limited routes.
type Config struct {
	Convert Tier
	path    string
}

// NewConfig creates a Config limiting POSTs to convertPath to perMinute
// requests per client IP with the given burst. perMinute <= 0 disables
// limiting.
func NewConfig(convertPath string, perMinute, burst int) *Config {
	c := &Config{path: convertPath}
	if perMinute > 0 {
		c.Convert = Tier{
			Name:    "convert",
			Limiter: NewLimiter(perMinute, time.Minute, burst),
		}
	}
	return c
}

// Match returns the tier for a request, or nil when it is not rate limited.
// Only well-formed conversion calls consume tokens; wrong methods are
// rejected before any limiter is consulted.
func (c *Config) Match(method, path string) *Tier {
	if c == nil || c.Convert.Limiter == nil {
		return nil
	}
	if method == http.MethodPost && path == c.path {
		return &c.Convert
	}
	return nil
}

// Close stops all limiter cleanup goroutines.
func (c *Config) Close() {
	if c != nil && c.Convert.Limiter != nil {
		c.Convert.Limiter.Close()
	}
}
