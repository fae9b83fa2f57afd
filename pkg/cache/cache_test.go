package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mro/pkg/config"
	errs "github.com/matzehuels/mro/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "result:abc"); hit {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, "result:abc", []byte(`{"D":["D","B","C","A"]}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "result:abc")
	if err != nil || !hit {
		t.Fatalf("Get() hit=%v err=%v", hit, err)
	}
	if !bytes.Contains(data, []byte(`"B","C"`)) {
		t.Errorf("Get() data = %s", data)
	}

	if err := c.Delete(ctx, "result:abc"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "result:abc"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "result:abc"); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(filepath.Join(t.TempDir(), "mro"))
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Clear() removed %d entries, want 2", n)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatalf("cache dir should exist after Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	k1 := k.ResultKey("h1", ResultKeyOpts{})
	if !strings.HasPrefix(k1, "result:") {
		t.Errorf("ResultKey = %q, want result: prefix", k1)
	}
	if k1 == k.ResultKey("h2", ResultKeyOpts{}) {
		t.Error("different graph hashes should produce different keys")
	}
	if k1 == k.ResultKey("h1", ResultKeyOpts{DepthFirst: true}) {
		t.Error("different options should produce different keys")
	}

	a := k.ResultKey("h1", ResultKeyOpts{Classes: []string{"D", "B", "B"}})
	b := k.ResultKey("h1", ResultKeyOpts{Classes: []string{"B", "D"}})
	if a != b {
		t.Error("class order and duplicates should not change the key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "staging:")

	want := "staging:" + inner.ResultKey("h", ResultKeyOpts{})
	if got := scoped.ResultKey("h", ResultKeyOpts{}); got != want {
		t.Errorf("ResultKey = %q, want %q", got, want)
	}
	if got := NewScopedKeyer(nil, "p:").ResultKey("h", ResultKeyOpts{}); !strings.HasPrefix(got, "p:result:") {
		t.Errorf("nil inner should fall back to the default keyer: %q", got)
	}
}

func TestKeyerFor(t *testing.T) {
	if _, ok := KeyerFor(config.Cache{}).(DefaultKeyer); !ok {
		t.Error("no prefix should give the default keyer")
	}
	if _, ok := KeyerFor(config.Cache{Prefix: "x:"}).(*ScopedKeyer); !ok {
		t.Error("a prefix should give a scoped keyer")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, config.Cache{Backend: config.BackendNull})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(NullCache); !ok {
		t.Errorf("null backend = %T", c)
	}

	dir := t.TempDir()
	c, err = Open(ctx, config.Cache{Backend: config.BackendFile, Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := c.(*FileCache); !ok || fc.Dir() != dir {
		t.Errorf("file backend = %T", c)
	}

	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	if _, err := Open(ctx, config.Cache{Backend: config.BackendFile}); err != nil {
		t.Errorf("file backend with default dir: %v", err)
	}

	if _, err := Open(ctx, config.Cache{Backend: "memcached"}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unknown backend error = %v", err)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	base := errors.New("connection refused")
	err := Retryable(base)
	if !IsRetryable(err) {
		t.Error("IsRetryable should be true for wrapped error")
	}
	if err.Error() != base.Error() || !errors.Is(err, base) {
		t.Error("wrapping should preserve message and chain")
	}
	if IsRetryable(base) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()
	refused := errors.New("refused")

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error { calls++; return refused })
	if err != refused || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(refused)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry then succeed: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(refused) })
	if !errors.Is(err, refused) || calls != retryAttempts {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(errors.New("refused")) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// backendContract runs the shared Cache behaviour against a live backend.
func backendContract(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	key := "mro-test:" + t.Name()
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("fresh key: hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("deleted key should miss")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("MRO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MRO_TEST_REDIS_ADDR not set")
	}
	c := NewRedisCache(RedisOptions{Addr: addr})
	defer c.Close()
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	backendContract(t, c)
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("MRO_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MRO_TEST_MONGO_URI not set")
	}
	c, err := NewMongoCache(context.Background(), MongoOptions{URI: uri, Database: "mro_test", Collection: "results"})
	if err != nil {
		t.Fatalf("NewMongoCache: %v", err)
	}
	defer c.Close()
	backendContract(t, c)
}
