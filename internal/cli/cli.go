// Package cli implements the gramgraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/williamcotton/gramgraph/pkg/buildinfo"
	"github.com/williamcotton/gramgraph/pkg/cache"
	"github.com/williamcotton/gramgraph/pkg/config"
	"github.com/williamcotton/gramgraph/pkg/pipeline"
)

const appName = "gramgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	In  io.Reader // table input when -i is absent or "-"
	Out io.Writer // artifacts and machine-readable output

	configPath string
}

// New returns a CLI logging to w at level, reading stdin and writing stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand returns the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "GramGraph compiles a chart grammar into SVG, PNG or a scene graph",
		Long: `GramGraph reads CSV data and a small grammar-of-graphics pipeline such as

  aes(x: quarter, y: amount, color: type) | bar(position: "stack")

and renders the chart as SVG or PNG, or emits the compiled scene graph as JSON
or msgpack for other renderers.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (TOML or YAML)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file, applies its log level and attaches the
// logger to the command context.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOptional(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		c.Logger.SetLevel(lvl)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// newRunner builds a pipeline runner with the configured cache backend, or
// no cache when noCache is set. backend overrides the configured one when
// non-empty.
func (c *CLI) newRunner(ctx context.Context, backend string, noCache bool) (*pipeline.Runner, error) {
	if noCache {
		return pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger), nil
	}
	opts := c.cacheOptions()
	if backend != "" {
		opts.Backend = backend
	}
	ch, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, nil, c.Logger)
	r.TTL = c.Config.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) cacheOptions() cache.Options {
	cc := c.Config.Cache
	return cache.Options{
		Backend:       cc.Backend,
		Dir:           cc.Dir,
		RedisURL:      cc.RedisURL,
		MongoURI:      cc.MongoURI,
		MongoDatabase: cc.MongoDatabase,
	}
}

// cacheDir returns the file cache directory.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// parseFormats splits a comma-separated format list. Empty falls back to def.
func parseFormats(s string, def []string) []string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
