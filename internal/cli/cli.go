// Package cli implements the depview command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depview/pkg/buildinfo"
	"github.com/matzehuels/depview/pkg/cache"
	"github.com/matzehuels/depview/pkg/config"
	"github.com/matzehuels/depview/pkg/fetch"
	dio "github.com/matzehuels/depview/pkg/io"
	"github.com/matzehuels/depview/pkg/layout"
	"github.com/matzehuels/depview/pkg/model"
	"github.com/matzehuels/depview/pkg/view"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "depview"

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
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depview explores component dependency graphs",
		Long: `depview renders a component dependency graph around one focus component
and shows what it requires and what requires it.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/depview/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())

	return root
}

func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			c.Logger.Debug("no user config dir", "err", err)
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	c.Config = cfg
	c.configPath = path

	level, err := log.ParseLevel(cfg.Log.Level)
	if err == nil {
		c.SetLogLevel(level)
	}
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	return nil
}

// =============================================================================
// View Flags
// =============================================================================

// viewFlags are the per-command overrides of the [view] config section.
type viewFlags struct {
	layout     string
	requires   int
	requiredBy int
	graph      string
	remote     string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.layout, "layout", "l", "", "layout: force, tree or cluster")
	cmd.Flags().IntVar(&f.requires, "requires", 0, "hops to follow along requires")
	cmd.Flags().IntVar(&f.requiredBy, "required-by", 0, "hops to follow along required_by")
	cmd.Flags().StringVarP(&f.graph, "graph", "g", "", "graph file (.json or .dot)")
	cmd.Flags().StringVar(&f.remote, "remote", "", "depview server URL instead of a local graph")
}

// apply copies flags the user set onto cfg.
func (f *viewFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("layout") {
		cfg.View.Layout = f.layout
	}
	if cmd.Flags().Changed("requires") {
		cfg.View.Requires = f.requires
	}
	if cmd.Flags().Changed("required-by") {
		cfg.View.RequiredBy = f.requiredBy
	}
	if f.remote != "" {
		cfg.Remote.URL = f.remote
	}
	return cfg.Validate()
}

func (c *CLI) paneOptions(cfg config.Config) view.Options {
	return view.Options{
		Canvas:     cfg.Canvas(),
		Layout:     cfg.LayoutKind(),
		Requires:   cfg.View.Requires,
		RequiredBy: cfg.View.RequiredBy,
		Steps:      cfg.View.Steps,
		Batch:      cfg.View.Batch,
		Params:     layout.DefaultParams(),
		Logger:     c.Logger,
	}
}

// =============================================================================
// Fetcher Factory
// =============================================================================

// source is where a command reads components from. Model is nil for a
// remote source.
type source struct {
	Fetcher fetch.Fetcher
	Model   *model.Model
	close   func() error
}

func (s source) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openSource loads the graph file, or connects to the configured remote
// server when no file was given.
func (c *CLI) openSource(ctx context.Context, cfg config.Config, graphPath string) (source, error) {
	if graphPath != "" {
		prog := newProgress(c.Logger)
		m, fp, err := dio.Load(ctx, graphPath)
		if err != nil {
			return source{}, err
		}
		prog.done(fmt.Sprintf("Loaded %d components from %s (%s)", m.Len(), graphPath, fp[:12]))
		return source{Fetcher: fetch.NewLocal(m), Model: m}, nil
	}
	if cfg.Remote.URL == "" {
		return source{}, fmt.Errorf("no graph: pass --graph FILE or --remote URL")
	}

	store, err := c.openCache(ctx, cfg)
	if err != nil {
		return source{}, err
	}
	client, err := fetch.NewClient(cfg.Remote.URL,
		fetch.WithCache(store, cfg.Cache.TTL),
		fetch.WithHeaders(map[string]string{"User-Agent": buildinfo.UserAgent()}),
	)
	if err != nil {
		store.Close()
		return source{}, err
	}
	c.Logger.Debug("using remote graph", "url", cfg.Remote.URL, "cache", cfg.Cache.Backend)
	return source{Fetcher: client, close: store.Close}, nil
}

// openCache opens the configured backend, falling back to no cache when
// it is unavailable.
func (c *CLI) openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	store, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}
