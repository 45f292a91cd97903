// Package pkg holds the libraries behind deptree, which resolves a Go module
// version into its full dependency tree.
//
// # Layout
//
//   - [deps]: the concurrent tree builder and its collaborator interfaces
//   - [deps/golang]: Go module resolution (import paths, go.mod, licenses)
//   - [integrations]: HTTP clients for GitHub and the Go module proxy
//   - [cache]: response caches (file, redis, null)
//   - [render]: text, JSON, DOT and SVG output
//   - [errors], [httputil], [observability]: shared plumbing
//
// # Data Flow
//
//	<host>/<owner>/<name>@<version>
//	         ↓
//	[deps/golang.ParseRoot]  (validate, no network)
//	         ↓
//	[deps.Builder.Build]     (go.mod → requirements → identifiers → licenses)
//	         ↓
//	[render.Write]           (text, json, graph, dot, svg)
//
// # Quick Start
//
//	root, err := golang.ParseRoot("github.com/spf13/cobra@v1.8.0", nil)
//	if err != nil {
//	    return err
//	}
//	b := golang.NewBuilder(golang.Config{
//	    Cache:       cache.NewNullCache(),
//	    GitHubToken: os.Getenv("GITHUB_TOKEN"),
//	}, deps.Options{})
//	tree, err := b.Build(ctx, root)
//	if err != nil {
//	    return err
//	}
//	return render.WriteText(os.Stdout, tree)
package pkg
