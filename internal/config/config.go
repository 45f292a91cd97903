package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/deptree/pkg/deps"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/integrations/github"
	"github.com/matzehuels/deptree/pkg/integrations/goproxy"
	"github.com/matzehuels/deptree/pkg/render"
)

const (
	// AppName names the config and cache directories.
	AppName = "deptree"

	// EnvPrefix prefixes environment overrides (DEPTREE_MAX_DEPTH, ...).
	EnvPrefix = "DEPTREE"

	// TokenEnv is read when no token is configured otherwise.
	TokenEnv = "GITHUB_TOKEN"

	fileName = "config.toml"
)

// Config is the effective deptree configuration.
type Config struct {
	Token        string        `mapstructure:"token" toml:"token,omitempty"`
	Concurrency  int           `mapstructure:"concurrency" toml:"concurrency"`
	MaxDepth     int           `mapstructure:"max_depth" toml:"max_depth"`
	MaxNodes     int           `mapstructure:"max_nodes" toml:"max_nodes"`
	SkipIndirect bool          `mapstructure:"skip_indirect" toml:"skip_indirect"`
	Format       string        `mapstructure:"format" toml:"format"`
	NoCache      bool          `mapstructure:"no_cache" toml:"no_cache"`
	CacheDir     string        `mapstructure:"cache_dir" toml:"cache_dir,omitempty"`
	CacheURL     string        `mapstructure:"cache_url" toml:"cache_url,omitempty"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" toml:"-"`
	GitHubURL    string        `mapstructure:"github_url" toml:"github_url"`
	ProxyURL     string        `mapstructure:"proxy_url" toml:"proxy_url"`
	DirectHosts  []string      `mapstructure:"direct_hosts" toml:"direct_hosts,omitempty"`
	VanityHosts  []string      `mapstructure:"vanity_hosts" toml:"vanity_hosts,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Concurrency: deps.DefaultConcurrency,
		MaxDepth:    deps.DefaultMaxDepth,
		MaxNodes:    deps.DefaultMaxNodes,
		Format:      string(render.FormatText),
		CacheTTL:    deps.DefaultCacheTTL,
		GitHubURL:   github.DefaultBaseURL,
		ProxyURL:    goproxy.DefaultBaseURL,
	}
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// File is an explicit config file. It must exist. When empty the
	// default location is used if present.
	File string

	// Flags are bound over every other source. Flag names use dashes
	// ("max-depth" for max_depth). Only flags set on the command line win.
	Flags *pflag.FlagSet

	// Getenv looks up environment variables (default os.Getenv).
	Getenv func(string) string
}

// Load merges defaults, the TOML config file, DEPTREE_* environment
// variables and flags, in increasing precedence.
func Load(opts LoadOptions) (*Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	v := viper.New()
	for key, val := range Default().values() {
		v.SetDefault(key, val)
	}

	path := opts.File
	if path == "" {
		if p, ok := defaultFile(getenv); ok {
			path = p
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "config file %s", path)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "read config %s", path)
		}
	}

	// Environment sits between the file and flags, so it is merged into
	// the config layer rather than set as an override.
	env := map[string]any{}
	for _, key := range keys {
		if val := getenv(EnvPrefix + "_" + strings.ToUpper(key)); val != "" {
			env[key] = val
		}
	}
	if len(env) > 0 {
		if err := v.MergeConfigMap(env); err != nil {
			return nil, deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "environment")
		}
	}

	if opts.Flags != nil {
		var bindErr error
		opts.Flags.Visit(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !slices.Contains(keys, key) {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "parse config")
	}
	if cfg.Token == "" {
		cfg.Token = getenv(TokenEnv)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// keys lists every configuration key, in file order.
var keys = []string{
	"token", "concurrency", "max_depth", "max_nodes", "skip_indirect", "format",
	"no_cache", "cache_dir", "cache_url", "cache_ttl", "github_url", "proxy_url",
	"direct_hosts", "vanity_hosts",
}

func (c Config) values() map[string]any {
	return map[string]any{
		"token":         c.Token,
		"concurrency":   c.Concurrency,
		"max_depth":     c.MaxDepth,
		"max_nodes":     c.MaxNodes,
		"skip_indirect": c.SkipIndirect,
		"format":        c.Format,
		"no_cache":      c.NoCache,
		"cache_dir":     c.CacheDir,
		"cache_url":     c.CacheURL,
		"cache_ttl":     c.CacheTTL,
		"github_url":    c.GitHubURL,
		"proxy_url":     c.ProxyURL,
		"direct_hosts":  c.DirectHosts,
		"vanity_hosts":  c.VanityHosts,
	}
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	switch {
	case c.Concurrency < 1:
		return deperrors.New(deperrors.ErrCodeInvalidInput, "concurrency must be at least 1, got %d", c.Concurrency)
	case c.MaxDepth < 1:
		return deperrors.New(deperrors.ErrCodeInvalidInput, "max depth must be at least 1, got %d", c.MaxDepth)
	case c.MaxNodes < 1:
		return deperrors.New(deperrors.ErrCodeInvalidInput, "max nodes must be at least 1, got %d", c.MaxNodes)
	case c.CacheTTL < 0:
		return deperrors.New(deperrors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.CacheURL != "" {
		if err := deperrors.ValidateURL(c.CacheURL); err != nil {
			return err
		}
	}
	for _, u := range []string{c.GitHubURL, c.ProxyURL} {
		if err := deperrors.ValidateURL(u); err != nil {
			return err
		}
	}
	return nil
}

// Options converts the configuration to builder options.
func (c *Config) Options() deps.Options {
	return deps.Options{
		Concurrency:  c.Concurrency,
		MaxDepth:     c.MaxDepth,
		MaxNodes:     c.MaxNodes,
		CacheTTL:     c.CacheTTL,
		SkipIndirect: c.SkipIndirect,
	}
}

// Write encodes the configuration as TOML in the format [Load] reads. The
// token is masked.
func (c *Config) Write(w io.Writer) error {
	out := struct {
		Config
		CacheTTL string `toml:"cache_ttl"`
	}{Config: *c, CacheTTL: c.CacheTTL.String()}
	if out.Token != "" {
		out.Token = "********"
	}
	return toml.NewEncoder(w).Encode(out)
}

// Dir returns the config directory ($XDG_CONFIG_HOME/deptree or
// ~/.config/deptree).
func Dir(getenv func(string) string) (string, error) {
	if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// CacheDirectory returns the response cache directory ($XDG_CACHE_HOME/deptree
// or ~/.cache/deptree) unless the configuration names one.
func (c *Config) CacheDirectory(getenv func(string) string) (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	if dir := getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

func defaultFile(getenv func(string) string) (string, bool) {
	dir, err := Dir(getenv)
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
