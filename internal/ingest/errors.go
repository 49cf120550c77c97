package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used to classify pipeline failures. Components wrap their
// errors with one of these markers via Wrap so callers can route on the kind
// with errors.Is without parsing messages.
var (
	// ErrConfiguration marks invalid or unusable settings. Fatal at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrChecksum marks files that could not be fingerprinted or did not
	// hold still between checksum passes.
	ErrChecksum = errors.New("checksum error")
	// ErrEncoding marks content that does not decode under the configured
	// character encoding.
	ErrEncoding = errors.New("encoding error")
	// ErrValidation marks structural problems: empty files, missing key or
	// required columns, null key cells.
	ErrValidation = errors.New("validation error")
	// ErrLockTimeout marks failure to acquire the master lock in time.
	ErrLockTimeout = errors.New("lock timeout")
	// ErrPersistence marks failures writing the master dataset or metadata.
	ErrPersistence = errors.New("persistence error")
	// ErrArchive marks failures moving an ingested file to the archive.
	// The merge has already committed when this occurs.
	ErrArchive = errors.New("archive error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrPersistence
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "ingest failure"
	}
	return strings.Join(parts, ": ")
}

// Kind names the classification of err for logs and journal records.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrChecksum):
		return "checksum"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrArchive):
		return "archive"
	default:
		return "unknown"
	}
}
