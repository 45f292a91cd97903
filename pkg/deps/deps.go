package deps

import (
	"time"
)

const (
	DefaultMaxDepth    = 50             // Default maximum dependency depth
	DefaultMaxNodes    = 5000           // Default maximum distinct modules
	DefaultConcurrency = 8              // Default number of modules expanded in parallel
	DefaultCacheTTL    = 24 * time.Hour // Default HTTP cache duration

	// UnknownLicense is recorded when upstream reports no license or the
	// host has no license API.
	UnknownLicense = "unknown"
)

// Options configures dependency resolution behavior.
type Options struct {
	Concurrency  int                  // Modules expanded in parallel; 1 is strictly sequential (default: 8)
	MaxDepth     int                  // Maximum depth to traverse (default: 50)
	MaxNodes     int                  // Maximum distinct modules (default: 5000)
	CacheTTL     time.Duration        // HTTP cache duration (default: 24h)
	Refresh      bool                 // Bypass cache for fresh data
	SkipIndirect bool                 // Drop "// indirect" requirements when parsing
	Logger       func(string, ...any) // Progress callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Identifier is the canonical identity of one module version.
//
// Path is the module path as written in the requirement; Source is the
// repository the code lives in, without scheme. For github.com modules both
// are "github.com/<owner>/<name>". Subdir is the module's directory inside
// Source when several modules share one repository (go.opentelemetry.io/otel
// and go.opentelemetry.io/otel/trace both live in opentelemetry-go). Owner
// is empty for modules whose canonical location has no owner segment.
type Identifier struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Owner   string `json:"owner,omitempty"`
	Version string `json:"version"`
	Source  string `json:"source"`
	Subdir  string `json:"subdir,omitempty"`
}

// Key identifies a module version for deduplication: two requirements for
// the same module path at the same Version are the same node, even when
// they share a repository with other modules.
func (id Identifier) Key() string {
	return id.String()
}

// String returns the requirement form "path@version".
func (id Identifier) String() string {
	path := id.Path
	if path == "" {
		path = id.Source
	}
	return path + "@" + id.Version
}

// Package is one node of a resolved dependency tree. Path is the module
// path; Source the repository it was read from.
//
// A module reached through several parents is a single *Package referenced
// from each of them. Dependencies keeps manifest order and must not be
// modified once [Builder.Build] returns.
type Package struct {
	Path         string     `json:"path,omitempty"`
	Name         string     `json:"name"`
	Owner        string     `json:"owner"`
	Version      string     `json:"version"`
	License      string     `json:"license"`
	Source       string     `json:"source"`
	Dependencies []*Package `json:"dependencies,omitempty"`
}

// Count returns the number of distinct packages reachable from root,
// root included. Shared nodes are counted once.
func Count(root *Package) int {
	if root == nil {
		return 0
	}
	seen := make(map[*Package]bool)
	var walk func(p *Package)
	walk = func(p *Package) {
		if seen[p] {
			return
		}
		seen[p] = true
		for _, d := range p.Dependencies {
			walk(d)
		}
	}
	walk(root)
	return len(seen)
}
