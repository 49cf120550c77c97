// Package watcher turns the one-shot ingest cycle into a long-running
// service, combining filesystem change events with a polling fallback.
package watcher
