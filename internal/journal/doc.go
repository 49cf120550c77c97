// Package journal records per-file ingest provenance in SQLite: outcome,
// merge effects, archive destination, and timing for every file a cycle
// touched. The history and status surfaces read from here.
package journal
