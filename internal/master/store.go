package master

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding"

	"hopper/internal/config"
	"hopper/internal/dataset"
	"hopper/internal/ingest"
	"hopper/internal/logging"
)

// Store reads and atomically replaces the master dataset and its metadata
// sidecar. Callers hold the Lock around Load and Persist; Store itself does
// not lock so that read-only surfaces can take best-effort snapshots.
type Store struct {
	masterPath   string
	metadataPath string
	enc          encoding.Encoding
	delimiter    rune
	logger       *slog.Logger
}

func NewStore(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	enc, err := config.ResolveEncoding(cfg.Ingest.CSVEncoding)
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrConfiguration, "master", "encoding", "", err)
	}
	delimiter, err := cfg.DelimiterRune()
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrConfiguration, "master", "delimiter", "", err)
	}
	return &Store{
		masterPath:   cfg.Paths.MasterFile,
		metadataPath: cfg.Paths.MetadataFile,
		enc:          enc,
		delimiter:    delimiter,
		logger:       logging.NewComponentLogger(logger, "master"),
	}, nil
}

// Path returns the master file location.
func (s *Store) Path() string {
	return s.masterPath
}

// Load returns the current master dataset. A missing master means a first
// run and yields an empty dataset; an unreadable or unparseable one is
// logged and also yields an empty dataset, so ingestion can start the
// master over rather than wedge.
func (s *Store) Load() dataset.Dataset {
	raw, err := os.ReadFile(s.masterPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("master dataset unreadable, starting fresh",
				logging.String("path", s.masterPath),
				logging.Error(err),
			)
		}
		return dataset.Dataset{}
	}
	data, err := dataset.Decode(raw, s.enc, s.delimiter)
	if err != nil {
		if errors.Is(err, dataset.ErrNoHeader) {
			return dataset.Dataset{}
		}
		s.logger.Warn("master dataset unparseable, starting fresh",
			logging.String("path", s.masterPath),
			logging.Error(err),
		)
		return dataset.Dataset{}
	}
	return data
}

// Persist atomically replaces the master dataset, then rewrites the
// metadata sidecar. The dataset is serialized to a temp file in the
// master's directory and renamed into place; the rename is the only step
// that mutates the previous master, so any earlier failure leaves it
// untouched. A failure after the rename leaves metadata one merge behind,
// which the next successful cycle repairs.
func (s *Store) Persist(data dataset.Dataset, now time.Time) error {
	dir := filepath.Dir(s.masterPath)
	base := filepath.Base(s.masterPath)

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return ingest.Wrap(ingest.ErrPersistence, "master", "write", "create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if err := s.writeDataset(tmp, data); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return ingest.Wrap(ingest.ErrPersistence, "master", "write", "set permissions", err)
	}
	if err := os.Rename(tmpPath, s.masterPath); err != nil {
		return ingest.Wrap(ingest.ErrPersistence, "master", "rename", "", err)
	}
	committed = true

	meta := BuildMetadata(data, now)
	if err := s.writeMetadata(meta); err != nil {
		return err
	}

	s.logger.Debug("master dataset replaced",
		logging.String("path", s.masterPath),
		logging.Int("row_count", meta.RowCount),
		logging.Int("column_count", meta.ColumnCount),
	)
	return nil
}

func (s *Store) writeDataset(tmp *os.File, data dataset.Dataset) error {
	if err := dataset.Encode(tmp, data, s.enc, s.delimiter); err != nil {
		tmp.Close()
		return ingest.Wrap(ingest.ErrPersistence, "master", "write", "", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return ingest.Wrap(ingest.ErrPersistence, "master", "write", "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return ingest.Wrap(ingest.ErrPersistence, "master", "write", "close temp file", err)
	}
	return nil
}
