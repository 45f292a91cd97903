// Package cache provides byte-oriented response caches for the upstream
// clients in [integrations].
//
// Three backends are available:
//
//   - [FileCache]: one JSON file per entry under the user cache directory
//     (the CLI default)
//   - [RedisCache]: a shared Redis instance, for teams or CI runners that
//     resolve the same trees repeatedly
//   - [NullCache]: caching disabled (--no-cache, tests)
//
// Use [NewScoped] to give each upstream its own key namespace.
//
// [integrations]: github.com/matzehuels/deptree/pkg/integrations
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with a per-entry TTL.
// Implementations must be safe for concurrent use; the tree builder calls
// into them from several goroutines at once.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil), never an
	// error. Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the backend.
	Close() error
}
