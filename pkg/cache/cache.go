// Package cache stores fetched documents by key.
//
// Backends implement [Cache]: [NullCache] disables caching, [FileCache]
// persists entries under a directory for the CLI, [MemoryCache] is a
// bounded LRU for a long-running server and [RedisCache] shares entries
// between server replicas. Keys are produced by a [Keyer] so every
// component agrees on how a neighborhood or detail request is named.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// A miss is reported as (nil, false, nil); errors are reserved for
// backend failures. A zero ttl stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
