// Package cli implements the motifscope command-line interface.
//
// The CLI renders pixel-matrix views to files, explores a dataset
// interactively in the terminal, draws node-link details of single networks,
// serves views over HTTP and manages the response cache. It is built on
// cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - render: Write motif and graphlet views as SVG, PNG or JSON
//   - explore: Browse the motif view in the terminal with linked panels
//   - detail: Draw the node-link diagram of one network
//   - serve: Serve views and interaction endpoints over HTTP
//   - cache: Manage the response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context, and pipeline, cache and HTTP events are
// logged at debug level through observability hooks.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/motifscope/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 3 views (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Logging Hooks
// =============================================================================

// registerHooks routes observability events to l at debug level.
func registerHooks(l *log.Logger) {
	h := logHooks{l: l}
	observability.SetPipelineHooks(h)
	observability.SetSelectionHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// logHooks implements every hook interface by logging the event.
type logHooks struct {
	l *log.Logger
}

func (h logHooks) OnFetchStart(_ context.Context, kind string, item int) {
	h.l.Debug("fetch", "kind", kind, "item", item)
}

func (h logHooks) OnFetchComplete(_ context.Context, kind string, item, columns int, d time.Duration, err error) {
	if err != nil {
		h.l.Debug("fetch failed", "kind", kind, "item", item, "err", err)
		return
	}
	h.l.Debug("fetched", "kind", kind, "item", item, "columns", columns, "duration", d)
}

func (h logHooks) OnLayoutStart(_ context.Context, view string, columns int) {
	h.l.Debug("layout", "view", view, "columns", columns)
}

func (h logHooks) OnLayoutComplete(_ context.Context, view string, d time.Duration, err error) {
	h.l.Debug("laid out", "view", view, "duration", d, "err", err)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.l.Debug("render", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.l.Debug("rendered", "formats", formats, "duration", d, "err", err)
}

func (h logHooks) OnDwellArmed(_ context.Context, view string, item int) {
	h.l.Debug("dwell armed", "view", view, "item", item)
}

func (h logHooks) OnDwellCancelled(_ context.Context, view string, item int) {
	h.l.Debug("dwell cancelled", "view", view, "item", item)
}

func (h logHooks) OnDwellFired(_ context.Context, view string, item int) {
	h.l.Debug("dwell fired", "view", view, "item", item)
}

func (h logHooks) OnClick(_ context.Context, view string, item int) {
	h.l.Debug("click", "view", view, "item", item)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.l.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.l.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.l.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.l.Debug("request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.l.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.l.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ observability.PipelineHooks  = logHooks{}
	_ observability.SelectionHooks = logHooks{}
	_ observability.CacheHooks     = logHooks{}
	_ observability.HTTPHooks      = logHooks{}
)
