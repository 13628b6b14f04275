// Manages server configuration stored in config.yaml.

// Package config loads the server configuration from the data directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/maruel/notion2md/internal/notion"
)

// FileName is the name of the configuration file in the data directory.
const FileName = "config.yaml"

// Config stores all server-wide configuration.
// Loaded from config.yaml, created with defaults if missing.
type Config struct {
	RateLimits RateLimits `yaml:"rate_limits" json:"rate_limits"`
	Upstream   Upstream   `yaml:"upstream" json:"upstream"`

	// MaxRequestBodyBytes limits the size of any single HTTP request body.
	// 0 means unlimited.
	MaxRequestBodyBytes int64 `yaml:"max_request_body_bytes" json:"max_request_body_bytes"`
}

// RateLimits defines rate limiting configuration.
type RateLimits struct {
	// ConvertPerMin limits conversions per client IP. 0 means unlimited.
	ConvertPerMin int `yaml:"convert_per_min" json:"convert_per_min"`
	// Burst is how many conversions a client can issue back to back.
	Burst int `yaml:"burst" json:"burst"`
	// TrustProxyHeaders keys clients by X-Forwarded-For / X-Real-IP instead
	// of the peer address. Enable only behind a reverse proxy that overwrites
	// these headers, otherwise callers can rotate them to evade the limit.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" json:"trust_proxy_headers"`
}

// Upstream configures calls to the Notion API.
type Upstream struct {
	BaseURL string        `yaml:"base_url" json:"base_url"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// MaxDepth is how many levels of nested blocks to fetch. 1 fetches only
	// the page's direct children with a single API call.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		RateLimits: RateLimits{ConvertPerMin: 30, Burst: 10},
		Upstream: Upstream{
			BaseURL:  notion.BaseURL,
			Timeout:  notion.DefaultTimeout,
			MaxDepth: 1,
		},
		MaxRequestBodyBytes: 64 * 1024,
	}
}

// Validate checks that rate limit values are non-negative.
func (r RateLimits) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ConvertPerMin, validation.Min(0)),
		validation.Field(&r.Burst, validation.Min(0)),
	)
}

// Validate checks the upstream settings.
func (u Upstream) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.BaseURL, validation.Required, is.URL),
		validation.Field(&u.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&u.MaxDepth, validation.Min(0), validation.Max(16)),
	)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RateLimits),
		validation.Field(&c.Upstream),
		validation.Field(&c.MaxRequestBodyBytes, validation.Min(int64(0))),
	)
}

// Load loads configuration from dataDir/config.yaml.
// Creates the file with defaults if it doesn't exist. Keys absent from the
// file keep their default value.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, FileName)
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from dataDir, not user input
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

// ApplyEnv overrides values from environment variables, typically loaded
// from .env. Unset variables are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("NOTION_API_BASE_URL"); ok && v != "" {
		c.Upstream.BaseURL = v
	}
	if v, ok := lookup("NOTION_MAX_DEPTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTION_MAX_DEPTH: %w", err)
		}
		c.Upstream.MaxDepth = n
	}
	if v, ok := lookup("CONVERT_PER_MIN"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CONVERT_PER_MIN: %w", err)
		}
		c.RateLimits.ConvertPerMin = n
	}
	if v, ok := lookup("TRUST_PROXY_HEADERS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRUST_PROXY_HEADERS: %w", err)
		}
		c.RateLimits.TrustProxyHeaders = b
	}
	return c.Validate()
}

// Save saves configuration to dataDir/config.yaml.
func (c *Config) Save(dataDir string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, FileName), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return nil
}
