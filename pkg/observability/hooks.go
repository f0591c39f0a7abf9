// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about reduction runs and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the engine dependency-free from observability frameworks
//   - Allows different backends (loggers, trace recorders, metrics)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetReduceHooks(&myReduceHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// The reduce hooks carry no context: a reduction run is synchronous and
// single-threaded, and the engine takes no context argument.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Reduce Hooks
// =============================================================================

// ReduceHooks receives events from the graph reduction engine.
type ReduceHooks interface {
	// OnRunStart records the start of a reduction run over a graph with
	// the given number of allocated nodes.
	OnRunStart(nodeCount int)

	// OnRunFinish records the end of a run: total nodes visited
	// (counting re-visits) and wall-clock duration.
	OnRunFinish(visited int, duration time.Duration)

	// OnNodeChanged records a successful reduction of one node.
	// inPlace distinguishes in-place mutation from replacement.
	OnNodeChanged(id uint32, op string, inPlace bool)

	// OnReplace records node being replaced by replacement.
	OnReplace(node, replacement uint32)

	// OnRevisit records a node being queued for re-examination.
	OnRevisit(node uint32)

	// OnResweep records the start of full re-traversal number sweep.
	OnResweep(sweep int)
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

// NoopReduceHooks is a no-op implementation of ReduceHooks.
type NoopReduceHooks struct{}

func (NoopReduceHooks) OnRunStart(int)                     {}
func (NoopReduceHooks) OnRunFinish(int, time.Duration)     {}
func (NoopReduceHooks) OnNodeChanged(uint32, string, bool) {}
func (NoopReduceHooks) OnReplace(uint32, uint32)           {}
func (NoopReduceHooks) OnRevisit(uint32)                   {}
func (NoopReduceHooks) OnResweep(int)                      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	reduceHooks ReduceHooks = NoopReduceHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetReduceHooks registers custom reduce hooks.
// This should be called once at application startup before any reduction runs.
func SetReduceHooks(h ReduceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		reduceHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Reduce returns the registered reduce hooks.
func Reduce() ReduceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return reduceHooks
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
	reduceHooks = NoopReduceHooks{}
	cacheHooks = NoopCacheHooks{}
}
