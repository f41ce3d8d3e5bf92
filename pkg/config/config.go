// Package config loads powerset settings from a TOML file.
//
// Settings come from, in increasing priority: built-in defaults, the config
// file, and command-line flags (applied by the caller). The file is looked up
// at $XDG_CONFIG_HOME/powerset/config.toml unless a path is given:
//
//	log_level = "info"
//
//	[limits]
//	max_states = 64
//
//	[cache]
//	backend = "file"   # none | file | redis
//	dir = ""           # default $XDG_CACHE_HOME/powerset
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//	redis_db = 0
//	prefix = ""        # key namespace for shared backends
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/powerset/pkg/cache"
	"github.com/matzehuels/powerset/pkg/errors"
	"github.com/matzehuels/powerset/pkg/pipeline"
)

// AppName names the config and cache directories.
const AppName = "powerset"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

var backends = []string{BackendNone, BackendFile, BackendRedis}

// Config is the full set of file settings.
type Config struct {
	LogLevel string `toml:"log_level"`
	Limits   Limits `toml:"limits"`
	Cache    Cache  `toml:"cache"`
	Server   Server `toml:"server"`
}

// Limits bounds the work a single request may cause.
type Limits struct {
	MaxStates int `toml:"max_states"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Limits:   Limits{MaxStates: pipeline.DefaultMaxStates},
		Cache: Cache{
			Backend:   BackendFile,
			TTL:       Duration{cache.ResultTTL},
			RedisAddr: "localhost:6379",
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads the config file at path on top of the defaults. An empty path
// means DefaultPath; a missing default file is not an error, a missing
// explicit one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
			}
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid log_level")
	}
	if c.Limits.MaxStates <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limits.max_states must be positive, got %d", c.Limits.MaxStates)
	}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want one of %s)", c.Cache.Backend, strings.Join(backends, ", "))
	}
	if c.Cache.TTL.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server.addr cannot be empty")
	}
	return nil
}

// Level returns the parsed log level. Validate guarantees it parses.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// CacheDir returns the file cache directory: cache.dir if set, otherwise
// the XDG cache directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultPath returns $XDG_CONFIG_HOME/powerset/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns the cache directory using XDG standard (~/.cache/powerset/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".cache", AppName), nil
}
