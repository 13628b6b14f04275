// Provides HTTP helpers for rate limiting.

package ratelimit

import (
	"net/http"
	"strconv"
)

// WriteHeaders writes rate limit headers to the response.
// Headers are written on all responses (both success and 429).
func WriteHeaders(w http.ResponseWriter, result Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if !result.Allowed {
		h.Set("Retry-After", strconv.Itoa(result.RetryAfterSeconds()))
	}
}

// BuildKey creates a rate limit bucket key from a client IP and tier name.
func BuildKey(clientIP, tierName string) string {
	return "ip:" + clientIP + ":" + tierName
}

// Check applies the tier matching r, keyed by clientIP. It returns ok=false
// when the route is not rate limited.
func (c *Config) Check(r *http.Request, clientIP string) (res Result, ok bool) {
	tier := c.Match(r.Method, r.URL.Path)
	if tier == nil {
		return Result{}, false
	}
	return tier.Limiter.Allow(BuildKey(clientIP, tier.Name)), true
}
