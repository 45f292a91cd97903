package integrations

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a module, file or license doesn't exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when an upstream keeps rejecting requests
	// because a quota is exhausted (429, or GitHub's 403 with no remaining calls).
	ErrRateLimited = errors.New("rate limited")

	// ErrMultipleMatches is returned when a path that should name a single
	// file resolves to several entries (e.g. go.mod is a directory).
	ErrMultipleMatches = errors.New("multiple matches")
)

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewNoRedirectClient creates an HTTP client that returns 3xx responses to
// the caller instead of following them. Vanity import resolution reads the
// go-import marker from the first response only.
func NewNoRedirectClient() *http.Client {
	return &http.Client{
		Timeout: httpTimeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// NormalizeRepoURL strips a URL scheme, git+ prefix, scp-style GitHub
// prefix and .git suffix, returning a bare host/path location such as
// "github.com/golang/sys". Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "git+")
	s = strings.Replace(s, "git@github.com:", "github.com/", 1)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".git")
	return s
}

// rateLimitWait extracts how long the upstream asked us to wait from the
// Retry-After (seconds) or X-RateLimit-Reset (unix seconds) headers.
func rateLimitWait(h http.Header, now time.Time) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Unix(unix, 0).Sub(now); d > 0 {
				return d
			}
		}
	}
	return 0
}

func isRateLimited(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return resp.Header.Get("X-RateLimit-Remaining") == "0"
	}
	return false
}
