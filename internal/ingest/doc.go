// Package ingest defines the shared vocabulary of the ingest pipeline:
// classified error sentinels, per-file outcomes, and context annotation.
//
// Pipeline components wrap their failures with one of the sentinel errors so
// the orchestrator can classify them with errors.Is, record the matching
// Outcome in the journal, and decide whether a failure stops the scan or only
// skips the file. Context helpers carry the scan cycle identifier and current
// source file so loggers can tag every line without threading extra arguments.
//
// The package sits below logging and the concrete pipeline stages and must not
// import either.
package ingest
