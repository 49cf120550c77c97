// Package monitor orchestrates ingest cycles. One cycle scans the watch
// directory, filters unstable files, and runs each survivor through
// validate, merge, persist, and archive, journalling the outcome per file.
package monitor
