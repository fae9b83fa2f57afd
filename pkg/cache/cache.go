// Package cache stores linearization results.
//
// Two layers live here. [Memo] is the in-session linearization cache: it
// computes the linearization of each class at most once per hierarchy, even
// under concurrent requests, and remembers failures as well as successes.
// [Cache] is the persistent result store shared across runs, backed by the
// local filesystem, Redis or MongoDB.
//
// # Persistent backends
//
//   - [NullCache]: stores nothing
//   - [FileCache]: one JSON file per key under a directory, used by the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [MongoCache]: shared cache with a TTL index on expiry
//
// [Open] picks a backend from the [config.Cache] section.
//
// # Keys
//
// Result keys are derived from the hierarchy hash by a [Keyer]. A
// [ScopedKeyer] adds a prefix so several deployments can share one backend.
package cache

import (
	"context"
	"time"
)

// TTLResult is the default lifetime of a cached result set.
const TTLResult = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
