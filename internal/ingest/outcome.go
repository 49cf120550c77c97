package ingest

import "errors"

// Outcome records how the pipeline disposed of one candidate file.
type Outcome string

const (
	// OutcomeMerged means the file was validated, merged, persisted, and archived.
	OutcomeMerged Outcome = "merged"
	// OutcomeUnstable means the file changed between checksum passes and was deferred.
	OutcomeUnstable Outcome = "unstable"
	// OutcomeInvalid means the file failed encoding or structural validation.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeLockTimeout means the master lock could not be acquired in time.
	OutcomeLockTimeout Outcome = "lock_timeout"
	// OutcomePersistFailed means the merged dataset could not be written.
	OutcomePersistFailed Outcome = "persist_failed"
	// OutcomeArchiveFailed means the merge committed but the archive move failed.
	OutcomeArchiveFailed Outcome = "archive_failed"
)

// OutcomeForError maps a classified pipeline error to the journal outcome.
func OutcomeForError(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeMerged
	case errors.Is(err, ErrChecksum):
		return OutcomeUnstable
	case errors.Is(err, ErrEncoding), errors.Is(err, ErrValidation):
		return OutcomeInvalid
	case errors.Is(err, ErrLockTimeout):
		return OutcomeLockTimeout
	case errors.Is(err, ErrArchive):
		return OutcomeArchiveFailed
	default:
		return OutcomePersistFailed
	}
}
