package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/integrations"
)

// DefaultBaseURL is the public GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// Client provides access to the GitHub REST API for file contents and
// license metadata. It handles HTTP requests with caching, automatic
// retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
// Responses are cached in backend under the "github:" namespace.
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "github:", cacheTTL, headers(token)),
		baseURL: DefaultBaseURL,
	}
}

// SetBaseURL points the client at another API root, such as a GitHub
// Enterprise server ("https://ghe.example.com/api/v3").
func (c *Client) SetBaseURL(baseURL string) {
	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func headers(token string) map[string]string {
	h := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	return h
}

// FetchFile returns the decoded contents of path in owner/name at ref
// (a tag, branch or commit hash; empty means the default branch).
//
// A path that names a directory yields [integrations.ErrMultipleMatches];
// a missing repository, ref or file yields [integrations.ErrNotFound].
func (c *Client) FetchFile(ctx context.Context, owner, name, path, ref string) (string, error) {
	if err := ValidateRepoRef(owner, name); err != nil {
		return "", err
	}
	key := fmt.Sprintf("contents:%s/%s/%s@%s", owner, name, path, ref)

	var text string
	err := c.Cached(ctx, key, false, &text, func() error {
		var err error
		text, err = c.fetchFile(ctx, owner, name, path, ref)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("github %s/%s/%s@%s: %w", owner, name, path, ref, err)
	}
	return text, nil
}

func (c *Client) fetchFile(ctx context.Context, owner, name, path, ref string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, name, strings.TrimPrefix(path, "/"))
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}

	var raw rawContents
	if err := c.Get(ctx, u, &raw); err != nil {
		return "", err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		return "", integrations.ErrMultipleMatches
	}

	var file contentResponse
	if err := json.Unmarshal(raw, &file); err != nil {
		return "", fmt.Errorf("decode contents: %w", err)
	}
	if file.Type != "" && file.Type != "file" {
		return "", fmt.Errorf("%w: %s is a %s", integrations.ErrMultipleMatches, path, file.Type)
	}
	if file.Encoding != "" && file.Encoding != "base64" {
		return "", fmt.Errorf("unsupported content encoding %q", file.Encoding)
	}

	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode base64 content: %w", err)
	}
	return string(data), nil
}

// FetchLicense returns the display name of the license GitHub detected for
// owner/name, falling back to its SPDX identifier. It returns
// [integrations.ErrNotFound] when the repository has no detectable license.
func (c *Client) FetchLicense(ctx context.Context, owner, name string) (string, error) {
	if err := ValidateRepoRef(owner, name); err != nil {
		return "", err
	}
	key := fmt.Sprintf("license:%s/%s", owner, name)

	var entry licenseEntry
	err := c.Cached(ctx, key, false, &entry, func() error {
		return c.fetchLicense(ctx, owner, name, &entry)
	})
	if err != nil {
		return "", fmt.Errorf("github license %s/%s: %w", owner, name, err)
	}
	if !entry.Found {
		return "", fmt.Errorf("github license %s/%s: %w", owner, name, integrations.ErrNotFound)
	}
	return entry.Name, nil
}

func (c *Client) fetchLicense(ctx context.Context, owner, name string, entry *licenseEntry) error {
	var data licenseResponse
	u := fmt.Sprintf("%s/repos/%s/%s/license", c.baseURL, owner, name)
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			*entry = licenseEntry{}
			return nil
		}
		return err
	}

	licenseName := data.License.Name
	if licenseName == "" {
		licenseName = data.License.SPDXID
	}
	*entry = licenseEntry{Name: licenseName, Found: licenseName != ""}
	return nil
}
