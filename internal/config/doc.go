// Package config loads deptree's configuration.
//
// Values are layered, lowest precedence first:
//
//  1. built-in defaults ([Default])
//  2. a TOML file: --config, or $XDG_CONFIG_HOME/deptree/config.toml when present
//  3. DEPTREE_* environment variables (DEPTREE_MAX_DEPTH=10, DEPTREE_VANITY_HOSTS=a.io,b.io)
//  4. command-line flags that were explicitly set
//
// GITHUB_TOKEN is used when no token was configured through any layer.
//
// Example config.toml:
//
//	concurrency = 4
//	max_depth = 20
//	cache_ttl = "12h"
//	vanity_hosts = ["golang.org", "go.example.com"]
package config
