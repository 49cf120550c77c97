package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding"

	"hopper/internal/config"
	"hopper/internal/dataset"
	"hopper/internal/ingest"
	"hopper/internal/logging"
)

// Batch is a validated incoming file ready to merge: its parsed rows plus the
// provenance the journal and archiver need.
type Batch struct {
	Path     string
	Checksum string
	Data     dataset.Dataset
}

// KeyValues returns the batch's distinct key values in first-seen order.
func (b *Batch) KeyValues(keyColumn string) []string {
	return b.Data.KeyValues(keyColumn)
}

// Loader reads stable files and enforces the structural contract before
// anything reaches the merge.
type Loader struct {
	keyColumn string
	required  []string
	enc       encoding.Encoding
	delimiter rune
	logger    *slog.Logger
}

// NewLoader builds a loader from configuration. Encoding and delimiter
// problems surface here as configuration errors.
func NewLoader(cfg *config.Config, logger *slog.Logger) (*Loader, error) {
	enc, err := config.ResolveEncoding(cfg.Ingest.CSVEncoding)
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrConfiguration, "intake", "encoding", "", err)
	}
	delimiter, err := cfg.DelimiterRune()
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrConfiguration, "intake", "delimiter", "", err)
	}
	return &Loader{
		keyColumn: cfg.Ingest.KeyColumn,
		required:  append([]string{}, cfg.Ingest.RequiredColumns...),
		enc:       enc,
		delimiter: delimiter,
		logger:    logging.NewComponentLogger(logger, "intake"),
	}, nil
}

// Load reads, decodes, and validates one file. The returned error is
// classified: undecodable content is an encoding error, structural problems
// are validation errors, and read failures are checksum I/O errors. checksum
// is provenance from the stability pass and is carried through untouched.
func (l *Loader) Load(ctx context.Context, path string, checksum string) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ingest.Wrap(ingest.ErrChecksum, "intake", "read", "", err)
	}

	data, err := dataset.Decode(raw, l.enc, l.delimiter)
	if err != nil {
		switch {
		case errors.Is(err, dataset.ErrMalformedEncoding):
			return nil, ingest.Wrap(ingest.ErrEncoding, "intake", "decode", "", err)
		case errors.Is(err, dataset.ErrNoHeader):
			return nil, ingest.Wrap(ingest.ErrValidation, "intake", "parse", "file is empty", nil)
		default:
			return nil, ingest.Wrap(ingest.ErrValidation, "intake", "parse", "", err)
		}
	}

	if err := l.validate(data); err != nil {
		return nil, err
	}

	l.logger.Debug("batch validated",
		logging.String(logging.FieldSourceFile, path),
		logging.Int("row_count", len(data.Rows)),
		logging.Int("column_count", len(data.Columns)),
	)

	return &Batch{Path: path, Checksum: checksum, Data: data}, nil
}

func (l *Loader) validate(data dataset.Dataset) error {
	if len(data.Rows) == 0 {
		return ingest.Wrap(ingest.ErrValidation, "intake", "validate", "file has no data rows", nil)
	}
	if !data.HasColumn(l.keyColumn) {
		return ingest.Wrap(ingest.ErrValidation, "intake", "validate",
			fmt.Sprintf("key column %q missing", l.keyColumn), nil)
	}

	var missing []string
	for _, column := range l.required {
		if !data.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return ingest.Wrap(ingest.ErrValidation, "intake", "validate",
			fmt.Sprintf("required columns missing: %s", strings.Join(missing, ", ")), nil)
	}

	nullKeys := 0
	for _, row := range data.Rows {
		if row.IsNull(l.keyColumn) {
			nullKeys++
		}
	}
	if nullKeys > 0 {
		return ingest.Wrap(ingest.ErrValidation, "intake", "validate",
			fmt.Sprintf("%d rows have null values in key column %q", nullKeys, l.keyColumn), nil)
	}

	return nil
}
