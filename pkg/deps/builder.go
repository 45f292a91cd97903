package deps

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/observability"
)

// Builder resolves a module into its full dependency tree.
//
// Resolution runs in two phases. Discovery walks the requirement graph
// breadth-first: every distinct module (by [Identifier.Key]) is expanded
// exactly once, its manifest fetched and parsed, its requirements resolved
// and its license looked up. Modules of one depth level are expanded in
// parallel, bounded by [Options.Concurrency]. Assembly then links the
// discovered modules into [Package] nodes in manifest order, sharing one
// node per module.
//
// The first error of any kind aborts the whole build.
type Builder struct {
	resolver  IdentifierResolver
	manifests ManifestFetcher
	parser    ManifestParser
	licenses  LicenseFetcher
	opts      Options
}

// NewBuilder creates a Builder from its collaborators. Options are
// completed with [Options.WithDefaults].
func NewBuilder(resolver IdentifierResolver, manifests ManifestFetcher, parser ManifestParser, licenses LicenseFetcher, opts Options) *Builder {
	return &Builder{
		resolver:  resolver,
		manifests: manifests,
		parser:    parser,
		licenses:  licenses,
		opts:      opts.WithDefaults(),
	}
}

// Options returns the effective options.
func (b *Builder) Options() Options { return b.opts }

// Resolve resolves requirement to its identifier and builds its tree.
func (b *Builder) Resolve(ctx context.Context, requirement string) (*Package, error) {
	id, err := b.resolver.Resolve(ctx, requirement)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, id)
}

// module is the discovery-phase record of one distinct module version.
type module struct {
	id       Identifier
	pkg      *Package
	children []string // keys, manifest order, duplicates kept
}

// Build resolves root and everything it transitively requires. On error
// the result is nil; partial trees are never returned.
func (b *Builder) Build(ctx context.Context, root Identifier) (pkg *Package, err error) {
	start := time.Now()
	hooks := observability.Build()
	hooks.OnBuildStart(ctx, root.String())
	defer func() {
		hooks.OnBuildComplete(ctx, root.String(), Count(pkg), time.Since(start), err)
	}()

	modules, err := b.discover(ctx, root)
	if err != nil {
		return nil, err
	}
	return link(modules, root.Key())
}

func (b *Builder) discover(ctx context.Context, root Identifier) (map[string]*module, error) {
	first := &module{id: root}
	modules := map[string]*module{root.Key(): first}
	wave := []*module{first}

	for depth := 0; len(wave) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if depth > b.opts.MaxDepth {
			return nil, deperrors.New(deperrors.ErrCodeLimitExceeded,
				"dependency depth exceeds %d (reached %s)", b.opts.MaxDepth, wave[0].id)
		}

		resolved := make([][]Identifier, len(wave))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.opts.Concurrency)
		for i, m := range wave {
			g.Go(func() error {
				ids, err := b.expand(gctx, m)
				resolved[i] = ids
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var next []*module
		for i, m := range wave {
			for _, id := range resolved[i] {
				key := id.Key()
				m.children = append(m.children, key)
				if _, ok := modules[key]; ok {
					continue
				}
				if len(modules) >= b.opts.MaxNodes {
					return nil, deperrors.New(deperrors.ErrCodeLimitExceeded,
						"dependency tree exceeds %d modules (reached %s)", b.opts.MaxNodes, id)
				}
				child := &module{id: id}
				modules[key] = child
				next = append(next, child)
			}
		}
		b.opts.Logger("depth %d: %d modules, %d new", depth, len(modules), len(next))
		wave = next
	}
	return modules, nil
}

// expand drives one module through manifest fetch, parse, requirement
// resolution and license lookup. It fills m.pkg and returns the resolved
// requirements in manifest order.
func (b *Builder) expand(ctx context.Context, m *module) ([]Identifier, error) {
	id := m.id

	text, err := b.manifests.FetchManifest(ctx, id)
	if err != nil {
		return nil, annotate(deperrors.ErrCodeManifestFetch, err, "go.mod of %s", id)
	}
	reqs, err := b.parser.Parse(text)
	if err != nil {
		return nil, annotate(deperrors.ErrCodeInvalidManifest, err, "go.mod of %s", id)
	}

	ids := make([]Identifier, 0, len(reqs))
	for _, req := range reqs {
		child, err := b.resolver.Resolve(ctx, req)
		if err != nil {
			return nil, annotate(deperrors.ErrCodeResolution, err, "requirement %s of %s", req, id)
		}
		ids = append(ids, child)
	}

	license, err := b.licenses.FetchLicense(ctx, id)
	switch {
	case err == nil && license != "":
	case err == nil, deperrors.Is(err, deperrors.ErrCodeLicenseNotFound):
		license = UnknownLicense
	default:
		return nil, annotate(deperrors.ErrCodeNetwork, err, "license of %s", id)
	}

	m.pkg = &Package{
		Path:    id.Path,
		Name:    id.Name,
		Owner:   id.Owner,
		Version: id.Version,
		License: license,
		Source:  id.Source,
	}
	b.opts.Logger("resolved %s (%d requirements, license %s)", id, len(ids), license)
	observability.Build().OnModuleFetched(ctx, id.Key(), len(ids))
	return ids, nil
}

// link wires the discovered modules into Package nodes and rejects cycles.
func link(modules map[string]*module, rootKey string) (*Package, error) {
	for _, m := range modules {
		if len(m.children) == 0 {
			continue
		}
		m.pkg.Dependencies = make([]*Package, len(m.children))
		for i, key := range m.children {
			m.pkg.Dependencies[i] = modules[key].pkg
		}
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(modules))
	var stack []string

	var visit func(key string) error
	visit = func(key string) error {
		switch state[key] {
		case done:
			return nil
		case active:
			return cycleError(stack, key)
		}
		state[key] = active
		stack = append(stack, key)
		for _, child := range modules[key].children {
			if err := visit(child); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[key] = done
		return nil
	}

	if err := visit(rootKey); err != nil {
		return nil, err
	}
	return modules[rootKey].pkg, nil
}

func cycleError(stack []string, key string) error {
	start := 0
	for i, k := range stack {
		if k == key {
			start = i
			break
		}
	}
	path := append(append([]string{}, stack[start:]...), key)
	return deperrors.New(deperrors.ErrCodeCycle, "dependency cycle: %s", strings.Join(path, " -> "))
}

// annotate adds module context to err, keeping the code of an already coded
// error and using code otherwise. Cancellation passes through untouched.
func annotate(code deperrors.Code, err error, format string, args ...any) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if c := deperrors.GetCode(err); c != "" {
		code = c
	}
	return deperrors.Wrap(code, err, format, args...)
}
