// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks at
// startup to receive events about data fetches, layout and rendering, linked
// selection, cache operations, and outgoing HTTP calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so library packages stay
// free of import cycles and backend dependencies.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetSelectionHooks(&mySelectionHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnFetchStart(ctx, "gdv", id)
//	// ... fetch ...
//	observability.Pipeline().OnFetchComplete(ctx, "gdv", id, columns, duration, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the fetch, layout and render stages.
type PipelineHooks interface {
	// Fetch events. item is -1 for dataset-wide payloads.
	OnFetchStart(ctx context.Context, kind string, item int)
	OnFetchComplete(ctx context.Context, kind string, item, columns int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, view string, columns int)
	OnLayoutComplete(ctx context.Context, view string, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Selection Hooks
// =============================================================================

// SelectionHooks receives events from the linked selection coordinator.
type SelectionHooks interface {
	// OnDwellArmed records that hovering started the detail timer.
	OnDwellArmed(ctx context.Context, view string, item int)

	// OnDwellCancelled records that the pointer left before the timer fired.
	OnDwellCancelled(ctx context.Context, view string, item int)

	// OnDwellFired records a detail request issued after the dwell delay.
	OnDwellFired(ctx context.Context, view string, item int)

	// OnClick records an immediate open request.
	OnClick(ctx context.Context, view string, item int)
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

// HTTPHooks receives events from HTTP client operations.
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

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string, int) {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                       {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)   {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopSelectionHooks is a no-op implementation of SelectionHooks.
type NoopSelectionHooks struct{}

func (NoopSelectionHooks) OnDwellArmed(context.Context, string, int)     {}
func (NoopSelectionHooks) OnDwellCancelled(context.Context, string, int) {}
func (NoopSelectionHooks) OnDwellFired(context.Context, string, int)     {}
func (NoopSelectionHooks) OnClick(context.Context, string, int)          {}

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

// slot holds one registered hook set. Reads are lock-free because hooks are
// looked up on every fetch, dwell event and cache access.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.noop
}

// set ignores nil so that an unconfigured backend keeps the no-op hooks.
func (s *slot[T]) set(h T) {
	if any(h) != nil {
		s.p.Store(&h)
	}
}

func (s *slot[T]) reset() { s.p.Store(nil) }

var (
	pipelineSlot  = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	selectionSlot = slot[SelectionHooks]{noop: NoopSelectionHooks{}}
	cacheSlot     = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpSlot      = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetPipelineHooks registers pipeline hooks. Call it at startup; a nil h is
// ignored.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h) }

// SetSelectionHooks registers selection hooks.
func SetSelectionHooks(h SelectionHooks) { selectionSlot.set(h) }

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks registers provider HTTP hooks.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Selection returns the registered selection hooks.
func Selection() SelectionHooks { return selectionSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks. Tests call it in cleanup.
func Reset() {
	pipelineSlot.reset()
	selectionSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
