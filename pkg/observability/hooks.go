// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about suite stages, cache operations, and registry calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the core packages stay
// free of any metrics framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSuiteHooks(&mySuiteHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Suite().OnResolveStart(ctx, pkg)
//	// ... query the registry ...
//	observability.Suite().OnResolveComplete(ctx, pkg, len(versions), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Suite Hooks
// =============================================================================

// SuiteHooks receives events from the resolver and the scheduler.
type SuiteHooks interface {
	// Resolution events, one pair per package.
	OnResolveStart(ctx context.Context, pkg string)
	OnResolveComplete(ctx context.Context, pkg string, versions int, duration time.Duration, err error)

	// Install phase of one matrix iteration.
	OnInstallStart(ctx context.Context, test string)
	OnInstallComplete(ctx context.Context, test string, duration time.Duration, err error)

	// Run phase of one matrix iteration. outcome is passed, failed or errored.
	OnRunStart(ctx context.Context, test string)
	OnRunComplete(ctx context.Context, test string, outcome string, duration time.Duration)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from registry HTTP calls.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSuiteHooks is a no-op implementation of SuiteHooks.
type NoopSuiteHooks struct{}

func (NoopSuiteHooks) OnResolveStart(context.Context, string) {}
func (NoopSuiteHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopSuiteHooks) OnInstallStart(context.Context, string)                          {}
func (NoopSuiteHooks) OnInstallComplete(context.Context, string, time.Duration, error) {}
func (NoopSuiteHooks) OnRunStart(context.Context, string)                              {}
func (NoopSuiteHooks) OnRunComplete(context.Context, string, string, time.Duration)    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	suiteHooks SuiteHooks = NoopSuiteHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetSuiteHooks registers custom suite hooks.
// This should be called once at application startup before any suite runs.
func SetSuiteHooks(h SuiteHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		suiteHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Suite returns the registered suite hooks.
func Suite() SuiteHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return suiteHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	suiteHooks = NoopSuiteHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
