// Package github provides an HTTP client for the GitHub REST API.
//
// # Overview
//
// This package fetches two things from https://api.github.com for modules
// hosted on GitHub:
//
//   - go.mod contents at a given tag or commit ([Client.FetchFile])
//   - the license GitHub detected for a repository ([Client.FetchLicense])
//
// # Usage
//
//	client := github.NewClient(backend, token, 24*time.Hour)
//
//	text, err := client.FetchFile(ctx, "spf13", "cobra", "go.mod", "v1.8.0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	license, err := client.FetchLicense(ctx, "spf13", "cobra")
//	if errors.Is(err, integrations.ErrNotFound) {
//	    license = "unknown"
//	}
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour. Exhausted quotas surface
// as [integrations.ErrRateLimited] after the retry budget is spent.
//
// # Caching
//
// File contents and license lookups (including "no license" answers) are
// cached under the "github:" namespace of the backend passed to
// [NewClient].
package github
