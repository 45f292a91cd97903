package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/internal/config"
	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/deps"
	"github.com/matzehuels/deptree/pkg/deps/golang"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/observability"
	"github.com/matzehuels/deptree/pkg/render"
)

// rootFlags holds the flags that are not configuration keys. Configuration
// flags are read back through [config.Load].
type rootFlags struct {
	configFile  string
	output      string
	refresh     bool
	verbose     bool
	printConfig bool
}

func (f *rootFlags) register(cmd *cobra.Command) {
	def := config.Default()
	fs := cmd.Flags()

	fs.String("token", "", "GitHub token (default $GITHUB_TOKEN)")
	fs.Int("concurrency", def.Concurrency, "modules fetched in parallel")
	fs.Int("max-depth", def.MaxDepth, "maximum dependency depth")
	fs.Int("max-nodes", def.MaxNodes, "maximum distinct modules")
	fs.Bool("skip-indirect", false, "ignore requirements marked // indirect")
	fs.String("format", def.Format, "output format: text, json, graph, dot or svg")
	fs.Bool("no-cache", false, "disable the HTTP response cache")
	fs.String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/deptree)")
	fs.String("cache-url", "", "shared redis cache, e.g. redis://localhost:6379/0")
	fs.Duration("cache-ttl", def.CacheTTL, "how long cached responses stay valid")
	fs.String("github-url", def.GitHubURL, "GitHub API root")
	fs.String("proxy-url", def.ProxyURL, "Go module proxy")
	fs.StringSlice("direct-hosts", nil, "hosts addressed as host/owner/name (default github.com)")
	fs.StringSlice("vanity-hosts", nil, "hosts resolved through go-import markers")

	fs.StringVar(&f.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/deptree/config.toml)")
	fs.StringVarP(&f.output, "output", "o", "", "write output to file instead of stdout")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached responses and refetch")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose logging")
	fs.BoolVar(&f.printConfig, "print-config", false, "print the effective configuration and exit")
}

// run resolves the module named by args[0] and writes its tree.
func (c *CLI) run(cmd *cobra.Command, args []string, flags rootFlags) error {
	if flags.verbose {
		c.SetLogLevel(LogDebug)
	}

	cfg, err := config.Load(config.LoadOptions{
		File:   flags.configFile,
		Flags:  cmd.Flags(),
		Getenv: c.getenv,
	})
	if err != nil {
		return err
	}
	if flags.printConfig {
		return cfg.Write(cmd.OutOrStdout())
	}

	if len(args) != 1 {
		return deperrors.New(deperrors.ErrCodeInvalidFormat,
			"expected exactly one argument <host>/<owner>/<name>@<version>, got %d", len(args))
	}
	root, err := golang.ParseRoot(args[0], cfg.DirectHosts)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := c.Logger.With("run", runID[:8])
	ctx := withLogger(cmd.Context(), logger)

	backend, err := c.newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	spinner := newSpinnerWithContext(ctx, c.stderr, "Resolving "+root.String())
	reporter := &buildReporter{logger: logger, spinner: spinner}
	observability.SetBuildHooks(reporter)
	if flags.verbose {
		observability.SetHTTPHooks(reporter)
		observability.SetCacheHooks(reporter)
	}
	defer observability.Reset()

	opts := cfg.Options()
	opts.Refresh = flags.refresh
	opts.Logger = logger.Debugf

	builder := golang.NewBuilder(golang.Config{
		Cache:       backend,
		GitHubToken: cfg.Token,
		GitHubURL:   cfg.GitHubURL,
		ProxyURL:    cfg.ProxyURL,
		DirectHosts: cfg.DirectHosts,
		VanityHosts: cfg.VanityHosts,
	}, opts)

	logger.Debug("Resolving", "module", root.String(), "concurrency", opts.Concurrency, "format", format)
	prog := newProgress(logger)

	if !flags.verbose && isTerminal(c.stderr) {
		spinner.Start()
	}
	tree, err := builder.Build(ctx, root)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d modules", deps.Count(tree)))

	return writeOutput(ctx, cmd.OutOrStdout(), flags.output, tree, format, c.stderr)
}

// writeOutput renders tree to path, or to stdout when path is empty.
func writeOutput(ctx context.Context, stdout io.Writer, path string, tree *deps.Package, format render.Format, status io.Writer) error {
	if path == "" {
		return render.Write(ctx, stdout, tree, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := render.Write(ctx, f, tree, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printFile(status, path)
	return nil
}

// newCache selects the response cache: none, a shared redis, or the local
// file cache.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch {
	case cfg.NoCache:
		return cache.NewNullCache(), nil
	case cfg.CacheURL != "":
		rc, err := cache.NewRedisCache(ctx, cfg.CacheURL)
		if err != nil {
			return nil, deperrors.Wrap(deperrors.ErrCodeNetwork, err, "cache %s", cfg.CacheURL)
		}
		return rc, nil
	}

	dir, err := cfg.CacheDirectory(c.getenv)
	if err != nil {
		loggerFromContext(ctx).Warn("Cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
