package goproxy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/integrations"
)

// DefaultBaseURL is the public Go module proxy.
const DefaultBaseURL = "https://proxy.golang.org"

// Client provides access to the Go module proxy API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Go module proxy client with the given cache backend.
// An empty baseURL selects [DefaultBaseURL].
//
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, baseURL string, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(backend, "goproxy:", cacheTTL, nil),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchGoMod returns the go.mod file the proxy serves for mod at version.
//
// Module paths with uppercase letters are escaped per the Go module proxy
// protocol. Returns [integrations.ErrNotFound] when the proxy has no such
// module version (the proxy answers 404 or 410 for those).
func (c *Client) FetchGoMod(ctx context.Context, mod, version string) (string, error) {
	mod = strings.TrimSpace(mod)
	key := "mod:" + mod + "@" + version

	var text string
	err := c.Cached(ctx, key, false, &text, func() error {
		url := fmt.Sprintf("%s/%s/@v/%s.mod", c.baseURL, escapePath(mod), escapePath(version))
		var err error
		text, err = c.GetText(ctx, url)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("go module %s@%s: %w", mod, version, err)
	}
	return text, nil
}

func escapePath(path string) string {
	var b strings.Builder
	for _, r := range path {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('!')
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
