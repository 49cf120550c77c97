package monitor

import (
	"time"

	"hopper/internal/ingest"
	"hopper/internal/journal"
)

// Summary is the outcome of one ingest cycle.
type Summary struct {
	CycleID  string
	DryRun   bool
	Started  time.Time
	Duration time.Duration
	Scanned  int
	Records  []*journal.Record
}

func (s *Summary) count(outcome ingest.Outcome) int {
	n := 0
	for _, rec := range s.Records {
		if rec.Outcome == outcome {
			n++
		}
	}
	return n
}

// MergedCount reports files merged into the master (in dry-run mode, files
// that would have merged).
func (s *Summary) MergedCount() int { return s.count(ingest.OutcomeMerged) }

// UnstableCount reports files skipped by the stability check. They are not
// failures; the next cycle retries them.
func (s *Summary) UnstableCount() int { return s.count(ingest.OutcomeUnstable) }

// FailedCount reports files that errored: validation, lock timeout,
// persistence, or archiving.
func (s *Summary) FailedCount() int {
	n := 0
	for _, rec := range s.Records {
		switch rec.Outcome {
		case ingest.OutcomeMerged, ingest.OutcomeUnstable:
		default:
			n++
		}
	}
	return n
}
