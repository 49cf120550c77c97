// Package archive moves merged source files out of the watch directory into
// timestamped archival storage and formats the provenance summary reported
// for each move.
package archive
