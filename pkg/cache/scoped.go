package cache

import (
	"context"
	"time"
)

// Scoped wraps a Cache and prefixes every key with a namespace.
// This keeps entries from different upstreams apart when they share one
// backend, e.g. "github:" and "goproxy:" in the same Redis database.
//
// Example usage:
//
//	gh := cache.NewScoped(backend, "github:")
//	proxy := cache.NewScoped(backend, "goproxy:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache view whose keys are prefixed with prefix.
// Scopes nest: NewScoped(NewScoped(c, "a:"), "b:") stores under "a:b:".
// A nil inner cache is replaced by a [NullCache].
func NewScoped(inner Cache, prefix string) *Scoped {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Prefix returns the namespace applied to keys.
func (s *Scoped) Prefix() string { return s.prefix }

// Get retrieves a prefixed key from the wrapped cache.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set stores a prefixed key in the wrapped cache.
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

// Delete removes a prefixed key from the wrapped cache.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close does nothing; the wrapped cache is owned by whoever created it.
func (s *Scoped) Close() error { return nil }

var _ Cache = (*Scoped)(nil)
