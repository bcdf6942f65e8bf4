// Package logz is the engine's minimal leveled logging seam. It wraps
// log/slog rather than a third-party logging framework: nothing in the
// retrieval pack pulls one in (see DESIGN.md). The engine logs only
// disposal errors; CacheEvent is provided for instance-cache diagnostics,
// and internal/cache does not call it.
package logz

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(slog.Default())
}

// SetDefault overrides the logger used by the engine's diagnostic sinks.
func SetDefault(l *slog.Logger) {
	defaultLogger.Store(l)
}

func get() *slog.Logger { return defaultLogger.Load() }

// DisposalError reports that a configured value-disposal callback itself
// failed (§4.7: "logged... but do not re-fault the node").
func DisposalError(ctx context.Context, err error, kind string) {
	get().ErrorContext(ctx, "value disposal failed", "kind", kind, "error", err)
}

// CacheEvent reports an instance-cache lifecycle transition for debugging
// teardown and de-duplication (§4.4).
func CacheEvent(ctx context.Context, event string, key string) {
	get().DebugContext(ctx, "instance cache", "event", event, "key", key)
}
