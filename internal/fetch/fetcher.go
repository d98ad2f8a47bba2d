package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/maltedev/kosmetik-price-monitor/internal/observability"
)

// ErrorKind distinguishes transport failures from HTTP-level rejections.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindBadStatus ErrorKind = "bad_status"
)

// Error is the failure result of a single page retrieval.
type Error struct {
	Kind   ErrorKind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindBadStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Page is a successfully retrieved page.
type Page struct {
	URL    string
	Status int
	Body   string
}

// Fetcher retrieves pages over the network. Adapters depend on this
// interface so tests can substitute canned pages.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// Limiter gates requests per host. Implemented by ratelimit.HostLimiter.
type Limiter interface {
	Acquire(ctx context.Context, host string) error
	Release(host string)
}

// Client performs one outbound HTTP GET per Fetch call with a fixed
// desktop-browser header set. No retries and no caching at this layer;
// retry policy belongs to the caller.
type Client struct {
	http      *http.Client
	userAgent string
	limiter   Limiter
	logger    *slog.Logger
}

type Options struct {
	Timeout   time.Duration
	UserAgent string
	Limiter   Limiter
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		limiter:   opts.Limiter,
		logger:    logger.With("component", "fetcher"),
	}
}

func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if c.limiter != nil {
		host := hostOf(rawURL)
		if err := c.limiter.Acquire(ctx, host); err != nil {
			return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
		}
		defer c.limiter.Release(host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		observability.FetchesTotal.WithLabelValues(hostOf(rawURL), "error").Inc()
		c.logger.Warn("request failed", "url", rawURL, "error", err)
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	observability.FetchesTotal.WithLabelValues(hostOf(rawURL), fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("unexpected status", "url", rawURL, "status", resp.StatusCode)
		return nil, &Error{Kind: KindBadStatus, URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}

	return &Page{URL: rawURL, Status: resp.StatusCode, Body: string(body)}, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
