package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/mro/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("default backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Engine.Workers < 1 {
		t.Errorf("default workers = %d, want >= 1", cfg.Engine.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[cache]
backend = "redis"
ttl = "90s"

[cache.redis]
addr = "redis:6380"
db = 2

[engine]
workers = 3

[server]
addr = ":9090"
session_ttl = "15m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Backend != BackendRedis {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration != 90*time.Second {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Cache.Redis.Addr != "redis:6380" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Cache.Redis)
	}
	if cfg.Engine.Workers != 3 {
		t.Errorf("workers = %d", cfg.Engine.Workers)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.SessionTTL.Duration != 15*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	// Untouched sections keep their defaults.
	if cfg.Cache.Mongo.Database != "mro" {
		t.Errorf("mongo database = %q, want default", cfg.Cache.Mongo.Database)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errs.Code
	}{
		{"bad toml", "[cache\n", errs.ErrCodeInvalidFormat},
		{"unknown key", "[cache]\nbackend = \"file\"\ncolour = \"blue\"\n", errs.ErrCodeInvalidFormat},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", errs.ErrCodeInvalidInput},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errs.ErrCodeInvalidFormat},
		{"negative workers", "[engine]\nworkers = -1\n", errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if !errs.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default file should not fail: %v", err)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Error("missing default file should yield defaults")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("missing explicit file error = %v, want INVALID_PATH", err)
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	if p, _ := DefaultPath(); p != filepath.Join("/xdg/config", "mro", "config.toml") {
		t.Errorf("DefaultPath() = %q", p)
	}
	if p, _ := DefaultCacheDir(); p != filepath.Join("/xdg/cache", "mro") {
		t.Errorf("DefaultCacheDir() = %q", p)
	}
}
