package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Sentinel errors raised while decoding raw file bytes into a Dataset. Callers
// classify them: encoding problems are distinct from structural ones.
var (
	// ErrMalformedEncoding means the bytes do not decode under the
	// configured character encoding.
	ErrMalformedEncoding = errors.New("content does not decode under configured encoding")
	// ErrNoHeader means the content has no header record at all.
	ErrNoHeader = errors.New("no header record")
	// ErrDuplicateColumn means the header names a column more than once.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Decode parses raw file bytes into a Dataset. The bytes are first decoded
// from enc into UTF-8 (enc nil means the content must already be valid UTF-8),
// then parsed as delimiter-separated values with the first record as header.
// Ragged records surface as csv parse errors.
func Decode(raw []byte, enc encoding.Encoding, delimiter rune) (Dataset, error) {
	text, err := decodeText(raw, enc)
	if err != nil {
		return Dataset{}, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = delimiter
	records, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return Dataset{}, ErrNoHeader
	}

	header := records[0]
	seen := make(map[string]struct{}, len(header))
	columns := make([]string, len(header))
	for i, name := range header {
		if _, ok := seen[name]; ok {
			return Dataset{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(columns))
		for i, value := range record {
			if value == "" {
				continue
			}
			row[columns[i]] = value
		}
		rows = append(rows, row)
	}

	return Dataset{Columns: columns, Rows: rows}, nil
}

// Encode serializes the dataset to w: header first, then rows with cells in
// column order and null cells rendered empty. The UTF-8 output is transformed
// through enc when one is provided; runes the target charset cannot represent
// fail the encode.
func Encode(w io.Writer, d Dataset, enc encoding.Encoding, delimiter rune) error {
	out := w
	var encoderWriter *transform.Writer
	if enc != nil {
		encoderWriter = transform.NewWriter(w, enc.NewEncoder())
		out = encoderWriter
	}

	writer := csv.NewWriter(out)
	writer.Comma = delimiter

	if err := writer.Write(d.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(d.Columns))
	for _, row := range d.Rows {
		for i, column := range d.Columns {
			record[i] = row.Value(column)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if encoderWriter != nil {
		if err := encoderWriter.Close(); err != nil {
			return fmt.Errorf("encode to configured charset: %w", err)
		}
	}
	return nil
}

// decodeText turns raw bytes into UTF-8 text, rejecting content the configured
// encoding cannot represent. A nil encoding selects strict UTF-8 validation.
// Decoders that substitute U+FFFD for undecodable bytes are treated as
// failures so silently corrupted data never reaches the merge.
func decodeText(raw []byte, enc encoding.Encoding) ([]byte, error) {
	if enc == nil {
		if !utf8.Valid(raw) {
			return nil, ErrMalformedEncoding
		}
		return raw, nil
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return nil, ErrMalformedEncoding
	}
	return decoded, nil
}
