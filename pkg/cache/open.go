package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options select and configure a backend.
type Options struct {
	Backend  string
	Dir      string // file
	Entries  int    // memory
	RedisURL string // redis
	Prefix   string // redis
}

// Open builds the configured backend. An empty Backend disables caching.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory")
		}
		return NewFileCache(opts.Dir)
	case BackendMemory:
		return NewMemoryCache(opts.Entries)
	case BackendRedis:
		return NewRedisCache(ctx, opts.RedisURL, opts.Prefix)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
