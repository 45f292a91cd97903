package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/buildinfo"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// stderr receives status lines and the spinner. Output goes to the
	// command's stdout.
	stderr io.Writer
	getenv func(string) string
}

// New creates a new CLI instance with a default logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stderr: w,
		getenv: os.Getenv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the deptree command with its maintenance subcommands.
func (c *CLI) RootCommand() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "deptree [flags] <host>/<owner>/<name>@<version>",
		Short: "Deptree prints the transitive dependency tree of a Go module",
		Long: `Deptree resolves a Go module version into its full dependency tree,
fetching each go.mod and looking up each repository's license, and prints the
tree as indented text, JSON, DOT or SVG.`,
		Example: `  deptree github.com/spf13/cobra@v1.8.0
  deptree --format json -o tree.json github.com/charmbracelet/log@v0.4.2
  deptree --skip-indirect --max-depth 3 github.com/redis/go-redis@v9.17.2`,
		Version:       buildinfo.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args, flags)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	flags.register(root)

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
