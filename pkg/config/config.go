// Package config loads gramgraph settings from a TOML or YAML file.
//
// Files are optional; every field has a default. Command-line flags override
// whatever the file sets.
//
//	[render]
//	width = 1024
//	formats = ["svg", "png"]
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
)

// Config is the full set of file-configurable settings.
type Config struct {
	Render RenderConfig `toml:"render" yaml:"render"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Server ServerConfig `toml:"server" yaml:"server"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

type RenderConfig struct {
	Width   int      `toml:"width" yaml:"width"`
	Height  int      `toml:"height" yaml:"height"`
	Formats []string `toml:"formats" yaml:"formats"`
	Title   string   `toml:"title" yaml:"title"`
}

type CacheConfig struct {
	Backend       string   `toml:"backend" yaml:"backend"`
	Dir           string   `toml:"dir" yaml:"dir"`
	TTL           Duration `toml:"ttl" yaml:"ttl"`
	RedisURL      string   `toml:"redis_url" yaml:"redis_url"`
	MongoURI      string   `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database" yaml:"mongo_database"`
}

type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Duration is a time.Duration written as a Go duration string ("12h").
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalYAML accepts the same duration strings as the TOML form.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Render: RenderConfig{Width: 800, Height: 600, Formats: []string{"svg"}},
		Cache:  CacheConfig{Backend: "file", TTL: Duration{7 * 24 * time.Hour}, MongoDatabase: "gramgraph"},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/gramgraph/config.toml (or the
// platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gramgraph", "config.toml"), nil
}

// Load reads path over the defaults. The decoder is picked by extension:
// .yaml and .yml are YAML, everything else is TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "read config %s", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional loads path, or the default path when path is empty. A missing
// default file yields Default(); a missing explicit file is an error.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	def, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(def); err != nil {
		return Default(), nil
	}
	return Load(def)
}

var (
	knownFormats  = []string{"svg", "png", "json", "msgpack"}
	knownBackends = []string{"file", "redis", "mongo", "none"}
	knownLevels   = []string{"debug", "info", "warn", "error"}
)

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return gerrors.New(gerrors.ErrCodeInvalidInput,
			"render: canvas %dx%d must be positive", c.Render.Width, c.Render.Height)
	}
	if len(c.Render.Formats) == 0 {
		return gerrors.New(gerrors.ErrCodeInvalidInput, "render: formats must not be empty")
	}
	for _, f := range c.Render.Formats {
		if !slices.Contains(knownFormats, strings.ToLower(f)) {
			return gerrors.New(gerrors.ErrCodeInvalidInput,
				"render: unknown format %q (want %s)", f, strings.Join(knownFormats, ", "))
		}
	}
	if !slices.Contains(knownBackends, c.Cache.Backend) {
		return gerrors.New(gerrors.ErrCodeInvalidInput,
			"cache: unknown backend %q (want %s)", c.Cache.Backend, strings.Join(knownBackends, ", "))
	}
	if c.Cache.TTL.Duration < 0 {
		return gerrors.New(gerrors.ErrCodeInvalidInput, "cache: ttl must not be negative")
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return gerrors.New(gerrors.ErrCodeInvalidInput, "cache: redis backend needs redis_url")
	}
	if c.Cache.Backend == "mongo" && c.Cache.MongoURI == "" {
		return gerrors.New(gerrors.ErrCodeInvalidInput, "cache: mongo backend needs mongo_uri")
	}
	if !slices.Contains(knownLevels, strings.ToLower(c.Log.Level)) {
		return gerrors.New(gerrors.ErrCodeInvalidInput,
			"log: unknown level %q (want %s)", c.Log.Level, strings.Join(knownLevels, ", "))
	}
	return nil
}

// String renders c as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
