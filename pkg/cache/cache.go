// Package cache stores pipeline results and rendered artifacts between runs.
//
// A [Cache] is a plain byte store keyed by strings. Keys come from a [Keyer],
// which hashes the canonical definition so equal inputs share an entry
// regardless of formatting. Three backends are provided:
//
//   - [NullCache] stores nothing
//   - [FileCache] keeps entries as JSON files, for the CLI
//   - [RedisCache] keeps entries in Redis, for a shared server deployment
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	ResultTTL = 24 * time.Hour
	RenderTTL = 7 * 24 * time.Hour
)

// Cache is a key/value store for serialized results.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A zero ttl in Set means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
