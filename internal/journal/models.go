package journal

import (
	"time"

	"hopper/internal/ingest"
)

// Record is one processed file: what was seen, how it ended, and what the
// merge changed. The JSON shape is part of the CLI surface (`hopper history
// --json`).
type Record struct {
	ID             int64          `json:"id"`
	CycleID        string         `json:"cycle_id"`
	SourcePath     string         `json:"source_path"`
	Checksum       string         `json:"checksum,omitempty"`
	Outcome        ingest.Outcome `json:"outcome"`
	Detail         string         `json:"detail,omitempty"`
	RowCount       int64          `json:"row_count"`
	KeyCount       int64          `json:"key_count"`
	DroppedColumns []string       `json:"dropped_columns,omitempty"`
	ArchivePath    string         `json:"archive_path,omitempty"`
	Duration       time.Duration  `json:"duration_ns"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ListOptions narrows a history query. Zero values mean no filter; a zero
// Limit falls back to a sane default.
type ListOptions struct {
	Limit   int
	Outcome ingest.Outcome
	CycleID string
}

const defaultListLimit = 50
