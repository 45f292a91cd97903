// Package httputil provides retry helpers for the upstream API clients.
//
// # Retry
//
// [Retry] re-runs an operation when it fails with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 and exhausted-quota 403 rate limit responses
//
// Every other error is returned on the first attempt, which keeps the tree
// builder fail-fast for permanent failures such as a missing go.mod.
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return client.fetch(ctx, url)
//	})
//
// # Configuration
//
// The integrations client retries with these defaults:
//
//   - Max attempts: 3
//   - Base backoff: 1 second, doubling per attempt
//   - Retry-After hints are honored up to [MaxRetryWait]
package httputil
