package archive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"hopper/internal/config"
	"hopper/internal/ingest"
	"hopper/internal/logging"
)

// timestampLayout gives archived names a millisecond suffix so the same
// source name can be archived repeatedly across fast successive runs.
const timestampLayout = "20060102T150405.000"

// Archiver relocates merged source files into archival storage under a
// timestamped name, keeping the watch directory as a pure inbox.
type Archiver struct {
	dir     string
	maxKeys int
	logger  *slog.Logger
	now     func() time.Time
}

func NewArchiver(cfg *config.Config, logger *slog.Logger) *Archiver {
	return &Archiver{
		dir:     cfg.Paths.ArchiveDir,
		maxKeys: cfg.Ingest.MaxKeysInSummary,
		logger:  logging.NewComponentLogger(logger, "archive"),
		now:     time.Now,
	}
}

// Store moves path into the archive and returns the destination. keys are
// the batch's key values, reported in the provenance summary. The merge has
// already been committed by the time Store runs, so a failure leaves the
// source in place for an idempotent re-ingest on the next cycle.
func (a *Archiver) Store(path string, keys []string) (string, error) {
	name := fmt.Sprintf("%s.%s", filepath.Base(path), a.now().Format(timestampLayout))
	destination := filepath.Join(a.dir, name)

	if err := a.move(path, destination); err != nil {
		return "", ingest.Wrap(ingest.ErrArchive, "archive", "move", "", err)
	}

	a.logger.Info("file archived",
		logging.String("source", path),
		logging.String("destination", destination),
		logging.String("keys", KeySummary(keys, a.maxKeys)),
		logging.Int("key_count", len(keys)),
	)
	return destination, nil
}

func (a *Archiver) move(source, destination string) error {
	renameErr := os.Rename(source, destination)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return renameErr
	}
	// Archive lives on another filesystem; fall back to copy and remove.
	if err := copyFile(source, destination); err != nil {
		return err
	}
	if err := os.Remove(source); err != nil {
		a.logger.Warn("failed to remove source file after copy",
			logging.String("source", source),
			logging.Error(err),
		)
	}
	return nil
}

// KeySummary renders up to limit keys sorted for display, with an explicit
// count suffix when the list was truncated. limit <= 0 disables truncation.
func KeySummary(keys []string, limit int) string {
	shown := keys
	if limit > 0 && len(keys) > limit {
		shown = keys[:limit]
	}
	sorted := append([]string{}, shown...)
	sort.Strings(sorted)
	summary := strings.Join(sorted, ", ")
	if len(shown) < len(keys) {
		summary += fmt.Sprintf("... (%d total)", len(keys))
	}
	return summary
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
