// Package observability provides hooks for metrics and tracing.
//
// Libraries in this module call the registered hooks; main registers real
// implementations at startup. Without registration every hook is a no-op,
// so nothing here depends on a metrics backend. See the prom subpackage for
// a Prometheus implementation.
//
//	func main() {
//	    observability.SetFeedHooks(prom.New(nil, ""))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Allocator().OnAllocateStart(ctx, seats, entries)
//	// ... allocate ...
//	observability.Allocator().OnAllocateComplete(ctx, seats, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Allocator Hooks
// =============================================================================

// AllocatorHooks receives events from seat allocation.
type AllocatorHooks interface {
	OnAllocateStart(ctx context.Context, seats, entries int)
	OnAllocateComplete(ctx context.Context, seats int, duration time.Duration, err error)
}

// =============================================================================
// Feed Hooks
// =============================================================================

// FeedHooks receives events from result ingestion.
type FeedHooks interface {
	// OnUpdate records an applied result. state is the new state name.
	OnUpdate(ctx context.Context, source, state string, reporting, seats int, duration time.Duration)

	// OnRejected records an update that could not be applied. code is the
	// error code of the failure.
	OnRejected(ctx context.Context, source, code string)

	// OnRetraction records an elected call being withdrawn.
	OnRetraction(ctx context.Context, entry string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAllocatorHooks is a no-op implementation of AllocatorHooks.
type NoopAllocatorHooks struct{}

func (NoopAllocatorHooks) OnAllocateStart(context.Context, int, int)                     {}
func (NoopAllocatorHooks) OnAllocateComplete(context.Context, int, time.Duration, error) {}

// NoopFeedHooks is a no-op implementation of FeedHooks.
type NoopFeedHooks struct{}

func (NoopFeedHooks) OnUpdate(context.Context, string, string, int, int, time.Duration) {}
func (NoopFeedHooks) OnRejected(context.Context, string, string)                        {}
func (NoopFeedHooks) OnRetraction(context.Context, string)                              {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	allocatorHooks AllocatorHooks = NoopAllocatorHooks{}
	feedHooks      FeedHooks      = NoopFeedHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	hooksMu        sync.RWMutex
)

// SetAllocatorHooks registers custom allocator hooks.
// This should be called once at application startup.
func SetAllocatorHooks(h AllocatorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		allocatorHooks = h
	}
}

// SetFeedHooks registers custom feed hooks.
// This should be called once at application startup.
func SetFeedHooks(h FeedHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		feedHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Allocator returns the registered allocator hooks.
func Allocator() AllocatorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return allocatorHooks
}

// Feed returns the registered feed hooks.
func Feed() FeedHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return feedHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	allocatorHooks = NoopAllocatorHooks{}
	feedHooks = NoopFeedHooks{}
	cacheHooks = NoopCacheHooks{}
}
