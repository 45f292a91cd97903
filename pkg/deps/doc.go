// Package deps builds dependency trees of Go modules.
//
// # Overview
//
// Given one module version, deps fetches its go.mod, resolves every
// requirement to the module's canonical source location, attaches license
// metadata and recurses until every reachable module is known. The result
// is a tree of [Package] nodes rooted at the requested module.
//
// # Architecture
//
// The resolution system has three layers:
//
//  1. Integrations ([integrations]): HTTP clients for GitHub, the module proxy and vanity hosts
//  2. Collaborators ([golang]): identifier resolution, go.mod fetching and parsing, licenses
//  3. Tree building (this package): [Builder] drives the collaborators
//
// The collaborators are interfaces ([IdentifierResolver], [ManifestFetcher],
// [ManifestParser], [LicenseFetcher]) so the builder can be tested without
// any network.
//
// # Building a Tree
//
//	b := deps.NewBuilder(resolver, manifests, parser, licenses, deps.Options{
//	    Concurrency: 8,
//	    MaxDepth:    50,
//	})
//	root, err := b.Resolve(ctx, "github.com/spf13/cobra@v1.8.0")
//
// Each distinct module version (see [Identifier.Key]) is fetched once. A
// module required by several parents is one shared *Package, so the result
// is a DAG even though printers walk it as a tree.
//
// # Failure Policy
//
// Resolution is all or nothing: the first failure cancels outstanding work
// and [Builder.Build] returns a nil tree with the error. Missing licenses
// are the exception and become [UnknownLicense]. Cycles (a module version
// that requires itself transitively) and exceeding [Options.MaxDepth] or
// [Options.MaxNodes] are errors too.
//
// # Options
//
// [Options] controls resolution behavior:
//
//   - Concurrency: Modules expanded in parallel (default 8, 1 = sequential)
//   - MaxDepth: Maximum dependency depth (default 50)
//   - MaxNodes: Maximum distinct modules (default 5000)
//   - CacheTTL: How long to cache HTTP responses (default 24h)
//   - Refresh: Bypass cache for fresh data
//   - SkipIndirect: Ignore requirements marked "// indirect"
//   - Logger: Progress callback, called from several goroutines
//
// [integrations]: github.com/matzehuels/deptree/pkg/integrations
// [golang]: github.com/matzehuels/deptree/pkg/deps/golang
package deps
