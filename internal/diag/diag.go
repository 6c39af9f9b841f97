// Package diag provides the runtime's structured logging, discarded by
// default so embedding a VM has zero logging overhead unless a host opts
// in (mirrors cmd/hiveexplorer/logger.Init's Enabled/discard pattern).
package diag

import (
	"io"
	"log/slog"
	"os"
)

// L is the package-level logger. Discarded by default; Init switches it
// to stderr.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures Init.
type Options struct {
	Enabled bool
	Level   slog.Level
}

// Init configures the package logger. Call once during host startup,
// before creating any vm.VM.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	L = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.Level}))
}

// envEnabled mirrors hive/alloc's HIVE_LOG_ALLOC toggle: a single env var
// lets a developer turn on verbose GC/allocator tracing without touching
// vm.Options in code.
func envEnabled(name string) bool {
	return os.Getenv(name) != ""
}

// GCTraceEnabled reports whether PYCORE_LOG_GC requests verbose GC
// tracing. When it does, the heap logs every allocation and, after each
// collection, the freed and surviving object counts, all through L at
// Debug level (so they appear only once Init has enabled L at Debug).
func GCTraceEnabled() bool {
	return envEnabled("PYCORE_LOG_GC")
}
