package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/deptree/pkg/cache"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/httputil"
	"github.com/matzehuels/deptree/pkg/observability"
)

// maxBodySize bounds how much of a response body is read. go.mod files and
// vanity pages are small; anything larger is not what we asked for.
const maxBodySize = 4 << 20

// Client provides shared HTTP functionality for all upstream API clients.
// It handles caching, retry logic, and common request headers.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http       *http.Client
	noRedirect *http.Client
	cache      cache.Cache
	ttl        time.Duration
	headers    map[string]string

	attempts int
	delay    time.Duration
	refresh  bool
}

// NewClient creates a Client with the given cache backend and default headers.
// Cache keys are prefixed with namespace (e.g. "github:"). Headers are
// applied to all requests made through this client; pass nil if none are
// needed. A nil backend disables caching.
func NewClient(backend cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	return &Client{
		http:       NewHTTPClient(),
		noRedirect: NewNoRedirectClient(),
		cache:      cache.NewScoped(backend, namespace),
		ttl:        ttl,
		headers:    headers,
		attempts:   3,
		delay:      time.Second,
	}
}

// SetRetryPolicy overrides the number of attempts and the initial backoff
// delay used for transient failures.
func (c *Client) SetRetryPolicy(attempts int, delay time.Duration) {
	c.attempts = attempts
	c.delay = delay
}

// SetRefresh makes every [Client.Cached] call bypass cached entries while
// still storing fresh results.
func (c *Client) SetRefresh(refresh bool) {
	c.refresh = refresh
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// fetch is retried on transient failures.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	hooks := observability.Cache()
	if !refresh && !c.refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok && json.Unmarshal(data, v) == nil {
			hooks.OnCacheHit(ctx, key)
			return nil
		}
		hooks.OnCacheMiss(ctx, key)
	}
	if err := httputil.Retry(ctx, c.attempts, c.delay, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, key, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	resp, err := c.do(ctx, c.http, url, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
// Useful for non-JSON endpoints like go.mod files.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	resp, err := c.do(ctx, c.http, url, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	return string(data), err
}

// Page is a raw HTTP response as returned without following redirects.
type Page struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// GetPage performs a single HTTP GET without following redirects and returns
// the status and body whatever the status is. Only transport failures,
// 5xx and rate limits are errors (the former two retryable).
func (c *Client) GetPage(ctx context.Context, url string) (*Page, error) {
	resp, err := c.do(ctx, c.noRedirect, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || isRateLimited(resp) {
		return nil, checkStatus(resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	return &Page{Status: resp.StatusCode, Body: string(data)}, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound, code == http.StatusGone:
		return ErrNotFound
	case isRateLimited(resp):
		wait := rateLimitWait(resp.Header, time.Now())
		rl := &deperrors.RateLimitedError{
			RetryAfter: int(wait / time.Second),
			Message:    fmt.Sprintf("status %d", code),
		}
		return httputil.RetryableAfter(fmt.Errorf("%w: %w", ErrRateLimited, rl), wait)
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
