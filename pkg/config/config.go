// Package config loads mro settings from a TOML file.
//
// The file is optional. Every field has a default, and command-line flags
// override whatever the file sets:
//
//	[cache]
//	backend = "file"        # null | file | redis | mongo
//	dir = ""                # file backend; defaults to $XDG_CACHE_HOME/mro
//	ttl = "24h"
//	prefix = ""
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[cache.mongo]
//	uri = "mongodb://localhost:27017"
//	database = "mro"
//	collection = "results"
//
//	[engine]
//	workers = 8
//
//	[server]
//	addr = ":8080"
//	session_ttl = "1h"
package config

import (
	"encoding"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/mro/pkg/errors"
)

const appName = "mro"

// Cache backend names.
const (
	BackendNull  = "null"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Backends lists the accepted cache backends.
var Backends = []string{BackendNull, BackendFile, BackendRedis, BackendMongo}

// Duration is a time.Duration that decodes from strings such as "90s".
type Duration struct {
	time.Duration
}

var _ encoding.TextUnmarshaler = (*Duration)(nil)

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full configuration tree.
type Config struct {
	Cache  Cache  `toml:"cache"`
	Engine Engine `toml:"engine"`
	Server Server `toml:"server"`
}

// Cache configures the persistent result cache.
type Cache struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
	Prefix  string   `toml:"prefix"`
	Redis   Redis    `toml:"redis"`
	Mongo   Mongo    `toml:"mongo"`
}

// Redis configures the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Mongo configures the mongo cache backend.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Engine configures linearization.
type Engine struct {
	// Workers bounds concurrent linearizations within one depth batch.
	Workers int `toml:"workers"`
}

// Server configures the HTTP API.
type Server struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: Cache{
			Backend: BackendFile,
			TTL:     Duration{24 * time.Hour},
			Redis:   Redis{Addr: "localhost:6379"},
			Mongo: Mongo{
				URI:        "mongodb://localhost:27017",
				Database:   appName,
				Collection: "results",
			},
		},
		Engine: Engine{Workers: runtime.GOMAXPROCS(0)},
		Server: Server{
			Addr:       ":8080",
			SessionTTL: Duration{time.Hour},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mro/config.toml, falling back to
// ~/.config/mro/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/mro, falling back to ~/.cache/mro.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path on top of [Default]. An empty path means
// [DefaultPath], and a missing default file is not an error. An explicitly
// named file must exist. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errs.Wrap(errs.ErrCodeInvalidPath, err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errs.New(errs.ErrCodeInvalidFormat, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if !slices.Contains(Backends, c.Cache.Backend) {
		return errs.New(errs.ErrCodeInvalidInput, "cache backend %q: must be one of %s", c.Cache.Backend, strings.Join(Backends, ", "))
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if c.Engine.Workers < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "engine workers must not be negative")
	}
	if c.Server.SessionTTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "server session_ttl must not be negative")
	}
	return nil
}
