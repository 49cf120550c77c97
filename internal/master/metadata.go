package master

import (
	"encoding/json"
	"os"
	"time"

	"hopper/internal/dataset"
	"hopper/internal/ingest"
)

// Metadata is the sidecar summary rewritten after every successful merge.
// It is advisory: readers can consume it without taking the master lock and
// it is never more than one merge behind the dataset itself.
type Metadata struct {
	LastUpdated string   `json:"last_updated"`
	RowCount    int      `json:"row_count"`
	ColumnCount int      `json:"column_count"`
	Columns     []string `json:"columns"`
}

func BuildMetadata(data dataset.Dataset, now time.Time) Metadata {
	columns := append([]string{}, data.Columns...)
	return Metadata{
		LastUpdated: now.UTC().Format(time.RFC3339),
		RowCount:    len(data.Rows),
		ColumnCount: len(columns),
		Columns:     columns,
	}
}

// ReadMetadata loads the sidecar from storage.
func (s *Store) ReadMetadata() (Metadata, error) {
	raw, err := os.ReadFile(s.metadataPath)
	if err != nil {
		return Metadata{}, ingest.Wrap(ingest.ErrPersistence, "master", "metadata", "", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, ingest.Wrap(ingest.ErrPersistence, "master", "metadata", "decode", err)
	}
	return meta, nil
}

func (s *Store) writeMetadata(meta Metadata) error {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return ingest.Wrap(ingest.ErrPersistence, "master", "metadata", "encode", err)
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(s.metadataPath, raw, 0o644); err != nil {
		return ingest.Wrap(ingest.ErrPersistence, "master", "metadata", "", err)
	}
	return nil
}
