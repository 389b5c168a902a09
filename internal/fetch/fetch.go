// Package fetch retrieves binary document templates over HTTP through a
// chain of routes: a direct request first, then public relay proxies for
// hosts that refuse direct access. The first route returning a plausible
// payload wins.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// minTemplateBytes rejects relay error pages and empty bodies that come back
// with a 200 status. A real template is never this small.
const minTemplateBytes = 100

// maxTemplateBytes bounds a single template download.
const maxTemplateBytes = 20 << 20

// Route names one way to reach a template URL.
type Route struct {
	Name string
	// Build rewrites the target URL into the URL to actually request.
	Build func(target string) string
}

// DirectRoute requests the target as-is.
func DirectRoute() Route {
	return Route{Name: "direct", Build: func(target string) string { return target }}
}

// CodeTabsRoute relays through the codetabs proxy.
func CodeTabsRoute() Route {
	return Route{Name: "codetabs", Build: func(target string) string {
		return "https://api.codetabs.com/v1/proxy?quest=" + url.QueryEscape(target)
	}}
}

// CorsProxyRoute relays through the corsproxy.io proxy.
func CorsProxyRoute() Route {
	return Route{Name: "corsproxy", Build: func(target string) string {
		return "https://corsproxy.io/?url=" + url.QueryEscape(target)
	}}
}

// DefaultRoutes is the production chain, direct first.
func DefaultRoutes() []Route {
	return []Route{DirectRoute(), CodeTabsRoute(), CorsProxyRoute()}
}

// ByteCache stores previously fetched templates keyed by their original URL.
type ByteCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Loader fetches templates through the route chain with an optional cache.
type Loader struct {
	client *http.Client
	routes []Route
	cache  ByteCache
	logger *slog.Logger

	cacheTTL time.Duration
	now      func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithRoutes replaces the route chain.
func WithRoutes(routes []Route) Option {
	return func(l *Loader) { l.routes = routes }
}

// WithCache enables byte caching with the given TTL.
func WithCache(c ByteCache, ttl time.Duration) Option {
	return func(l *Loader) {
		l.cache = c
		l.cacheTTL = ttl
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// NewLoader builds a template loader with the default route chain.
func NewLoader(logger *slog.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		client: &http.Client{Timeout: 45 * time.Second},
		routes: DefaultRoutes(),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch downloads the template at target, trying each route in order and
// returning the first payload that passes the size check. All route failures
// are aggregated into the returned error.
func (l *Loader) Fetch(ctx context.Context, target string) ([]byte, error) {
	if l.cache != nil {
		if b, ok := l.cache.GetBytes(ctx, target); ok {
			l.logger.Debug("template cache hit", "url", target, "bytes", len(b))
			return b, nil
		}
	}

	busted := cacheBust(target, l.now())

	var failures []error
	for _, r := range l.routes {
		b, err := l.fetchOnce(ctx, r.Build(busted))
		if err != nil {
			l.logger.Warn("template route failed", "route", r.Name, "url", target, "error", err)
			failures = append(failures, fmt.Errorf("route %s: %w", r.Name, err))
			continue
		}
		l.logger.Info("template fetched", "route", r.Name, "url", target, "bytes", len(b))
		if l.cache != nil {
			l.cache.SetBytes(ctx, target, b, l.cacheTTL)
		}
		return b, nil
	}
	return nil, fmt.Errorf("fetching template %s: %w", target, errors.Join(failures...))
}

func (l *Loader) fetchOnce(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateBytes))
	if err != nil {
		return nil, err
	}
	if len(b) < minTemplateBytes {
		return nil, fmt.Errorf("implausibly small payload (%d bytes)", len(b))
	}
	return b, nil
}

// cacheBust appends a timestamp query parameter so relay proxies cannot
// serve a stale copy of an updated template.
func cacheBust(target string, now time.Time) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("cb", strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}
