// Package golang resolves Go modules: requirement strings to canonical
// identifiers, go.mod files to requirement lists, and repositories to
// license names.
package golang

import (
	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/deps"
	"github.com/matzehuels/deptree/pkg/integrations"
	"github.com/matzehuels/deptree/pkg/integrations/github"
	"github.com/matzehuels/deptree/pkg/integrations/goproxy"
)

// Config selects the upstreams used to resolve Go modules.
type Config struct {
	Cache       cache.Cache // Response cache shared by all clients (nil disables caching)
	GitHubToken string      // Optional GitHub token
	GitHubURL   string      // GitHub API root (default https://api.github.com)
	ProxyURL    string      // Module proxy (default https://proxy.golang.org)
	DirectHosts []string    // Hosts addressed as host/owner/name (default [DefaultDirectHosts])
	VanityHosts []string    // Hosts serving go-import markers (default [DefaultVanityHosts])
}

// NewBuilder wires the GitHub, module proxy and vanity clients into a
// [deps.Builder]. opts.CacheTTL, opts.Refresh and opts.SkipIndirect are
// applied to the clients and parser.
func NewBuilder(cfg Config, opts deps.Options) *deps.Builder {
	opts = opts.WithDefaults()

	gh := github.NewClient(cfg.Cache, cfg.GitHubToken, opts.CacheTTL)
	gh.SetBaseURL(cfg.GitHubURL)
	proxy := goproxy.NewClient(cfg.Cache, cfg.ProxyURL, opts.CacheTTL)
	vanity := integrations.NewClient(cfg.Cache, "vanity:", opts.CacheTTL, nil)
	for _, c := range []*integrations.Client{gh.Client, proxy.Client, vanity} {
		c.SetRefresh(opts.Refresh)
	}

	return deps.NewBuilder(
		NewImportResolver(vanity, cfg.DirectHosts, cfg.VanityHosts),
		NewManifestFetcher(gh, proxy),
		GoModParser{SkipIndirect: opts.SkipIndirect},
		NewLicenseFetcher(gh),
		opts,
	)
}
