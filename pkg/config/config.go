// Package config loads Revlane configuration from a TOML file.
//
// Configuration is optional: every field has a working default and the
// CLI flags override whatever the file says. The default location is
// $XDG_CONFIG_HOME/revlane/config.toml.
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/revlane/revlane/pkg/cache"
	"github.com/revlane/revlane/pkg/errors"
	"github.com/revlane/revlane/pkg/pipeline"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

var validBackends = map[string]bool{
	BackendFile:  true,
	BackendRedis: true,
	BackendNone:  true,
}

// Config is the root configuration.
type Config struct {
	Graph  GraphConfig  `toml:"graph"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// GraphConfig controls walking and rendering defaults.
type GraphConfig struct {
	// Limit is the default window size when no --limit flag is given.
	Limit int `toml:"limit"`

	// Palette overrides the lane colors, as hex strings.
	Palette []string `toml:"palette"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Graph: GraphConfig{
			Limit: pipeline.DefaultLimit,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Dir:     defaultCacheDir(),
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Server: ServerConfig{
			Addr: "localhost:7420",
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "revlane", "config.toml")
}

// Load reads a config file, applying defaults for anything unset.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field values after loading.
func (c Config) Validate() error {
	if !validBackends[c.Cache.Backend] {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (valid: file, redis, none)", c.Cache.Backend)
	}
	if c.Graph.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "graph.limit must be non-negative")
	}
	return nil
}

// OpenCache constructs the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		})
	default:
		dir := c.Cache.Dir
		if dir == "" {
			dir = defaultCacheDir()
		}
		return cache.NewFileCache(dir)
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "revlane-cache")
	}
	return filepath.Join(dir, "revlane")
}
