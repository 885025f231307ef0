// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through the registered hooks; main registers an
// implementation at startup (see package prom for Prometheus). The
// defaults are no-ops so library code never checks for nil.
//
//	func main() {
//	    observability.SetViewHooks(prom.New(registry))
//	    // ...
//	}
//
// Emitting:
//
//	start := time.Now()
//	observability.View().OnLayoutStart(ctx, "tree", len(nodes))
//	// ... compute ...
//	observability.View().OnLayoutComplete(ctx, "tree", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// View Hooks
// =============================================================================

// ViewHooks receives events from the view controller.
type ViewHooks interface {
	// Request lifecycle; state is the pane state the request ended in.
	OnShowStart(ctx context.Context, label string, seq uint64)
	OnShowComplete(ctx context.Context, label string, seq uint64, state string, duration time.Duration, err error)
	// OnStale records a completion discarded because a newer request exists.
	OnStale(ctx context.Context, label string, seq uint64)

	// Layout events
	OnLayoutStart(ctx context.Context, kind string, nodeCount int)
	OnLayoutComplete(ctx context.Context, kind string, duration time.Duration, err error)

	// OnBind records one diff pass over the scene.
	OnBind(ctx context.Context, created, kept, removed int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP clients and servers.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

type NoopViewHooks struct{}

func (NoopViewHooks) OnShowStart(context.Context, string, uint64) {}
func (NoopViewHooks) OnShowComplete(context.Context, string, uint64, string, time.Duration, error) {
}
func (NoopViewHooks) OnStale(context.Context, string, uint64)                        {}
func (NoopViewHooks) OnLayoutStart(context.Context, string, int)                     {}
func (NoopViewHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}
func (NoopViewHooks) OnBind(context.Context, int, int, int)                          {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	viewHooks  ViewHooks  = NoopViewHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetViewHooks registers view hooks. Nil is ignored.
func SetViewHooks(h ViewHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		viewHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

func View() ViewHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return viewHooks
}

func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	viewHooks = NoopViewHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
