// Package logging assembles structured slog loggers and formatting helpers used
// across hopper components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can
// automatically tag log lines with scan cycle IDs and source files. The package
// also provides a no-op logger for tests and wiring code that cannot fail, and
// retention pruning for per-run log files.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape and routing guarantees as the rest of the
// system.
package logging
