package cache

import "errors"

var (
	// ErrNotFound is returned by loaders when the requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss is returned by GetJSON when no entry exists.
	ErrCacheMiss = errors.New("cache miss")
)
