// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"

	"github.com/maruel/notion2md/internal/server/handlers"
	"github.com/maruel/notion2md/internal/server/ipgeo"
	"github.com/maruel/notion2md/internal/server/ratelimit"
)

// ConvertPath is the route of the conversion endpoint.
const ConvertPath = "/api/notionToMarkdown"

// Options configures the router.
type Options struct {
	Version string
	// MaxRequestBodyBytes caps request bodies; 0 means unlimited.
	MaxRequestBodyBytes int64
	// ConvertPerMinute and Burst configure the per-IP limit on conversions;
	// ConvertPerMinute 0 disables it.
	ConvertPerMinute int
	Burst            int
	Upstream         handlers.UpstreamConfig
	// Fetcher overrides the Notion client, mostly for tests.
	Fetcher handlers.FetcherFactory
	// Geo resolves client IPs to countries for logs. May be nil.
	Geo *ipgeo.Checker
	// TrustProxyHeaders takes the client IP from X-Forwarded-For or
	// X-Real-IP. Only set it behind a reverse proxy that overwrites them.
	TrustProxyHeaders bool
}

// Router serves the API. Close releases the rate limiter.
type Router struct {
	mux    *http.ServeMux
	limits *ratelimit.Config
}

// NewRouter creates and configures the HTTP router.
func NewRouter(opts *Options) *Router {
	deps := &wrapDeps{
		limits:       ratelimit.NewConfig(ConvertPath, opts.ConvertPerMinute, opts.Burst),
		geo:          opts.Geo,
		maxBodyBytes: opts.MaxRequestBodyBytes,
		trustProxy:   opts.TrustProxyHeaders,
	}
	ch := handlers.NewConvertHandler(opts.Upstream)
	if opts.Fetcher != nil {
		ch = handlers.NewConvertHandlerWithFetcher(opts.Upstream.MaxDepth, opts.Fetcher)
	}
	hh := handlers.NewHealthHandler(opts.Version)
	sh := handlers.NewSchemaHandler()

	// Routes are registered without a method so that wrong methods get a JSON
	// 405 from Wrap instead of the mux's plain text one.
	mux := &http.ServeMux{}
	mux.Handle(ConvertPath, Wrap(http.MethodPost, ch.Convert, deps))
	mux.Handle("/api/health", Wrap(http.MethodGet, hh.Health, deps))
	mux.Handle("/api/schema", Wrap(http.MethodGet, sh.Schema, deps))
	mux.Handle("/", notFoundHandler(deps))
	return &Router{mux: mux, limits: deps.limits}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// Close stops background goroutines.
func (rt *Router) Close() error {
	rt.limits.Close()
	return nil
}
