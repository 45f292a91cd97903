// Package integrations provides the HTTP plumbing shared by upstream API
// clients.
//
// # Overview
//
// Module resolution talks to three kinds of upstream:
//
//   - [github]: GitHub REST API for go.mod contents and license metadata
//   - [goproxy]: Go module proxy for go.mod files of non-GitHub modules
//   - vanity hosts (golang.org, gopkg.in, ...) serving go-import markers
//
// Each has its own subpackage (vanity pages are fetched with
// [Client.GetPage] directly by the Go resolver).
//
// # Client Pattern
//
// Registry clients embed [Client] and wrap each call in [Client.Cached]:
//
//	c := github.NewClient(backend, token, 24*time.Hour)
//	text, err := c.FetchFile(ctx, "spf13", "cobra", "go.mod", "v1.8.0")
//
// [Client] handles:
//   - Response caching through a namespaced [cache.Cache]
//   - Retry with exponential backoff for network errors, 5xx and rate limits
//   - Default headers (auth tokens, Accept)
//   - Observability hooks for requests and cache traffic
//
// # Errors
//
// Failures map to the sentinels [ErrNotFound], [ErrNetwork],
// [ErrRateLimited] and [ErrMultipleMatches]; use errors.Is to test them.
//
// [github]: github.com/matzehuels/deptree/pkg/integrations/github
// [goproxy]: github.com/matzehuels/deptree/pkg/integrations/goproxy
// [cache.Cache]: github.com/matzehuels/deptree/pkg/cache.Cache
package integrations
