package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/motifscope/pkg/pipeline"
	"github.com/matzehuels/motifscope/pkg/selection"
)

// Cache backends.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Config is the optional config file. Flags override its values.
type Config struct {
	Provider ProviderConfig `toml:"provider"`
	View     ViewConfig     `toml:"view"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// ProviderConfig selects the data source. A URL wins over a path.
type ProviderConfig struct {
	URL     string   `toml:"url"`
	Path    string   `toml:"path"`
	Dataset string   `toml:"dataset"`
	Timeout duration `toml:"timeout"`
}

// ViewConfig holds view geometry and behavior.
type ViewConfig struct {
	Width        float64  `toml:"width"`
	Height       float64  `toml:"height"`
	PanelHeight  float64  `toml:"panel_height"`
	Dwell        duration `toml:"dwell"`
	Flat         bool     `toml:"flat"`
	Paging       bool     `toml:"paging"`
	Labels       bool     `toml:"labels"`
	Palette      string   `toml:"palette"`
	PanelPalette string   `toml:"panel_palette"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       duration `toml:"ttl"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Listen     string   `toml:"listen"`
	SessionTTL duration `toml:"session_ttl"`
}

// duration decodes TOML strings such as "1s" or "250ms".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// defaultConfig returns the built-in settings.
func defaultConfig() Config {
	return Config{
		Provider: ProviderConfig{Timeout: duration{10 * time.Second}},
		View: ViewConfig{
			Width:        pipeline.DefaultWidth,
			Height:       pipeline.DefaultHeight,
			PanelHeight:  pipeline.DefaultPanelHeight,
			Dwell:        duration{selection.DefaultDwell},
			Palette:      pipeline.PaletteDiverging,
			PanelPalette: pipeline.PaletteSequential,
		},
		Cache:  CacheConfig{Backend: cacheFile, RedisAddr: "localhost:6379"},
		Server: ServerConfig{Listen: ":8080", SessionTTL: duration{30 * time.Minute}},
	}
}

// loadConfig reads path over the defaults. A missing file is not an error
// unless the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case cacheFile, cacheRedis, cacheNone:
	default:
		return fmt.Errorf("invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if err := pipeline.ValidatePalette(c.View.Palette); err != nil {
		return err
	}
	return pipeline.ValidatePalette(c.View.PanelPalette)
}

// configPath returns the config file path using XDG standard
// (~/.config/motifscope/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
