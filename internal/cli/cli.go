package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/motifscope/pkg/buildinfo"
	"github.com/matzehuels/motifscope/pkg/cache"
	"github.com/matzehuels/motifscope/pkg/pipeline"
	"github.com/matzehuels/motifscope/pkg/provider"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "motifscope"

	// redisPrefix namespaces cache keys in a shared Redis.
	redisPrefix = appName + ":"
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

	cfg        Config
	configFile string
	flags      globalFlags
}

// globalFlags are the persistent flags that override config file values.
type globalFlags struct {
	url     string
	data    string
	dataset string
	noCache bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    defaultConfig(),
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
		Short: "motifscope explores motif significance profiles as pixel matrices",
		Long: `motifscope renders motif significance profiles and graphlet degree vectors
of network time series as pixel matrices. Long runs of similar networks are
folded so that large datasets stay readable, and hovering a column shows the
network behind it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			registerHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/motifscope/config.toml)")
	pf.StringVar(&c.flags.url, "url", "", "provider API base URL")
	pf.StringVar(&c.flags.data, "data", "", "local dataset bundle (file) or bundle directory")
	pf.StringVar(&c.flags.dataset, "dataset", "", "dataset to load")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable caching")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.detailCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() error {
	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		p, err := configPath()
		if err == nil {
			path = p
		}
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	if c.flags.url != "" {
		cfg.Provider.URL = c.flags.url
		cfg.Provider.Path = ""
	}
	if c.flags.data != "" {
		cfg.Provider.Path = c.flags.data
		cfg.Provider.URL = ""
	}
	if c.flags.dataset != "" {
		cfg.Provider.Dataset = c.flags.dataset
	}
	if c.flags.noCache {
		cfg.Cache.Backend = cacheNone
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Provider, Cache and Runner Factories
// =============================================================================

// newProvider opens the configured data source and loads the configured
// dataset.
func (c *CLI) newProvider(ctx context.Context, store cache.Cache) (provider.Provider, error) {
	pc := c.cfg.Provider
	var p provider.Provider
	switch {
	case pc.URL != "":
		hp, err := provider.NewHTTP(pc.URL,
			provider.WithCache(store, c.cfg.Cache.TTL.Duration),
			provider.WithHTTPClient(&http.Client{Timeout: pc.Timeout.Duration}),
			provider.WithLogger(c.Logger))
		if err != nil {
			return nil, err
		}
		p = hp
	case pc.Path != "":
		fp, err := openBundle(ctx, pc.Path)
		if err != nil {
			return nil, err
		}
		p = fp
	default:
		return nil, fmt.Errorf("no data source: set --url or --data, or [provider] in the config file")
	}
	if pc.Dataset != "" {
		if err := p.LoadDataset(ctx, pc.Dataset); err != nil {
			return nil, fmt.Errorf("load dataset %s: %w", pc.Dataset, err)
		}
	}
	return p, nil
}

// openBundle opens a bundle file, or a directory of bundles with nothing
// loaded yet.
func openBundle(ctx context.Context, path string) (*provider.FileProvider, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	if info.IsDir() {
		return provider.NewFile(path), nil
	}
	return provider.OpenFile(ctx, path)
}

// newCache opens the configured cache backend. Hits, misses and writes are
// reported through the observability hooks.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	switch c.cfg.Cache.Backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:   c.cfg.Cache.RedisAddr,
			Prefix: redisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc), nil
	default:
		dir, err := c.fileCacheDir()
		if err != nil {
			printWarning("Caching disabled: %v", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(fc), nil
	}
}

// fileCacheDir returns the configured cache directory or the XDG default.
func (c *CLI) fileCacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	p, err := c.newProvider(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return pipeline.NewRunner(p, store, nil, c.Logger), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/motifscope/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions builds pipeline options from the config.
func (c *CLI) pipelineOptions() pipeline.Options {
	v := c.cfg.View
	return pipeline.Options{
		Width:        v.Width,
		Height:       v.Height,
		PanelHeight:  v.PanelHeight,
		Flat:         v.Flat,
		Palette:      v.Palette,
		PanelPalette: v.PanelPalette,
		Logger:       c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseInts parses a comma-separated list of non-negative integers.
func parseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
