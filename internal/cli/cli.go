// Package cli implements the mro command-line interface.
//
// Every command reads a declaration file (JSON or TOML, see package io),
// runs it through the pipeline and prints the outcome:
//
//   - check: linearize every class and report the failures
//   - linearize: print the MRO of one or more classes
//   - resolve: find which class supplies a member
//   - explain: describe why a class has no consistent order
//   - graph: draw the hierarchy as DOT, SVG or PNG
//   - browse: explore the hierarchy interactively
//   - serve: run the HTTP session API
//   - cache: inspect and clear the result cache
//
// Settings come from the TOML config file (see package config); flags
// override them.
package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mro/pkg/buildinfo"
	"github.com/matzehuels/mro/pkg/cache"
	"github.com/matzehuels/mro/pkg/config"
	"github.com/matzehuels/mro/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "mro"

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

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "mro computes C3 method resolution orders",
		Long:         `mro linearizes multiple-inheritance class hierarchies with the C3 algorithm, resolves members along the resulting order and explains hierarchies that have no consistent order.`,
		Version:      buildinfo.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mro/config.toml)")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.linearizeCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.explainCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "backend", cfg.Cache.Backend, "workers", cfg.Engine.Workers)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache. The
// caller closes the returned cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, cache.Cache, error) {
	cc := c.cfg.Cache
	if noCache {
		cc.Backend = config.BackendNull
	}
	store, err := cache.Open(ctx, cc)
	if err != nil {
		return nil, nil, err
	}

	r := pipeline.NewRunner(store, cache.KeyerFor(cc), c.Logger)
	r.Workers = c.cfg.Engine.Workers
	if cc.TTL.Duration > 0 {
		r.TTL = cc.TTL.Duration
	}
	r.SessionTTL = c.cfg.Server.SessionTTL.Duration
	return r, store, nil
}

// run executes one pipeline run over the file at path. Relative paths are
// made absolute first since pipeline options reject "..".
func (c *CLI) run(ctx context.Context, path string, flags runFlags, classes ...string) (*pipeline.Result, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	runner, store, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return runner.Execute(ctx, pipeline.Options{
		Path:       path,
		Classes:    classes,
		DepthFirst: flags.compare,
		Refresh:    flags.refresh,
	})
}

// runFlags are the cache and comparison flags shared by query commands.
type runFlags struct {
	noCache bool
	refresh bool
	compare bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
}
