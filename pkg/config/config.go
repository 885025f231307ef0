// Package config loads depview settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/depview/config.toml (see [DefaultPath]);
// a missing file yields the defaults. Command-line flags override loaded
// values.
//
//	[view]
//	layout = "tree"
//	requires = 2
//	required_by = 0
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "10m"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depview/pkg/cache"
	derrors "github.com/matzehuels/depview/pkg/errors"
	"github.com/matzehuels/depview/pkg/layout"
	"github.com/matzehuels/depview/pkg/render"
)

// Defaults.
const (
	DefaultLayout     = "force"
	DefaultRequires   = 1
	DefaultRequiredBy = 1
	DefaultStyle      = "simple"
	DefaultAddr       = "127.0.0.1:8080"
	DefaultCacheTTL   = 10 * time.Minute
	DefaultLogLevel   = "info"
)

// Config is the whole file.
type Config struct {
	View   View   `toml:"view"`
	Server Server `toml:"server"`
	Cache  Cache  `toml:"cache"`
	Remote Remote `toml:"remote"`
	Log    Log    `toml:"log"`
}

// View configures panes and rendering.
type View struct {
	Layout     string  `toml:"layout"`
	Requires   int     `toml:"requires"`
	RequiredBy int     `toml:"required_by"`
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	NodeRadius float64 `toml:"node_radius"`
	Steps      int     `toml:"steps"`
	Batch      int     `toml:"batch"`
	Style      string  `toml:"style"`
}

type Server struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

type Cache struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	Entries  int           `toml:"entries"`
	RedisURL string        `toml:"redis_url"`
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

// Remote points the browser at a depview server instead of a local file.
type Remote struct {
	URL string `toml:"url"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns a Config with every default applied.
func Default() Config {
	var c Config
	c.View.Requires = DefaultRequires
	c.View.RequiredBy = DefaultRequiredBy
	c.SetDefaults()
	return c
}

// DefaultPath returns $XDG_CONFIG_HOME/depview/config.toml, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "depview", "config.toml"), nil
}

// DefaultCacheDir returns the user cache directory for the file backend.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "depview")
	}
	return filepath.Join(dir, "depview")
}

// Load reads path. A missing file yields Default().
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes TOML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return Config{}, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, derrors.New(derrors.ErrCodeInvalidFormat, "unknown config key %q", undecoded[0].String())
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// SetDefaults fills empty fields. Zero hop bounds are meaningful and kept.
func (c *Config) SetDefaults() {
	if c.View.Layout == "" {
		c.View.Layout = DefaultLayout
	}
	canvas := render.DefaultCanvas()
	if c.View.Width <= 0 {
		c.View.Width = canvas.Width
	}
	if c.View.Height <= 0 {
		c.View.Height = canvas.Height
	}
	if c.View.NodeRadius <= 0 {
		c.View.NodeRadius = canvas.NodeRadius
	}
	if c.View.Steps <= 0 {
		c.View.Steps = layout.DefaultSteps
	}
	if c.View.Batch <= 0 {
		c.View.Batch = 10
	}
	if c.View.Style == "" {
		c.View.Style = DefaultStyle
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.Backend == cache.BackendFile && c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir()
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks field values.
func (c Config) Validate() error {
	if _, err := layout.ParseKind(c.View.Layout); err != nil {
		return err
	}
	if err := derrors.ValidateDepth("view.requires", c.View.Requires); err != nil {
		return err
	}
	if err := derrors.ValidateDepth("view.required_by", c.View.RequiredBy); err != nil {
		return err
	}
	if c.View.Width <= 2*c.View.NodeRadius || c.View.Height <= 2*c.View.NodeRadius {
		return derrors.New(derrors.ErrCodeInvalidInput, "canvas %gx%g too small for node radius %g", c.View.Width, c.View.Height, c.View.NodeRadius)
	}
	switch c.View.Style {
	case "simple", "outline":
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, "unknown style %q (want simple or outline)", c.View.Style)
	}
	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile, cache.BackendMemory:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return derrors.New(derrors.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
		}
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Remote.URL != "" {
		if err := derrors.ValidateURL(c.Remote.URL); err != nil {
			return err
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, "unknown log level %q", c.Log.Level)
	}
	return nil
}

// LayoutKind returns the parsed view.layout.
func (c Config) LayoutKind() layout.Kind {
	k, _ := layout.ParseKind(c.View.Layout)
	return k
}

// Canvas returns the configured canvas.
func (c Config) Canvas() render.Canvas {
	return render.Canvas{Width: c.View.Width, Height: c.View.Height, NodeRadius: c.View.NodeRadius}
}

// CacheOptions returns options for cache.Open.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		Entries:  c.Cache.Entries,
		RedisURL: c.Cache.RedisURL,
		Prefix:   c.Cache.Prefix,
	}
}

func (c Config) String() string {
	return fmt.Sprintf("layout=%s requires=%d required_by=%d cache=%s", c.View.Layout, c.View.Requires, c.View.RequiredBy, c.Cache.Backend)
}
