package master_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"hopper/internal/config"
	"hopper/internal/dataset"
	"hopper/internal/ingest"
	"hopper/internal/logging"
	"hopper/internal/master"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.MasterFile = filepath.Join(dir, "master.csv")
	cfg.Paths.MetadataFile = filepath.Join(dir, "master.meta.json")
	cfg.Locking.TimeoutSeconds = 2
	cfg.Locking.RetryIntervalMillis = 10
	return &cfg
}

func newStore(t *testing.T, cfg *config.Config) *master.Store {
	t.Helper()
	store, err := master.NewStore(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	cfg := newTestConfig(t)
	store := newStore(t, cfg)
	data := dataset.Dataset{
		Columns: []string{"a", "id"},
		Rows: []dataset.Row{
			{"a": "x", "id": "1"},
			{"id": "2"},
		},
	}

	if err := store.Persist(data, time.Now()); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	raw, err := os.ReadFile(cfg.Paths.MasterFile)
	if err != nil {
		t.Fatalf("read master: %v", err)
	}
	if got, want := string(raw), "a,id\nx,1\n,2\n"; got != want {
		t.Errorf("master content = %q, want %q", got, want)
	}

	loaded := store.Load()
	if got := len(loaded.Rows); got != 2 {
		t.Fatalf("loaded row count = %d, want 2", got)
	}
	if !loaded.Rows[1].IsNull("a") {
		t.Errorf("loaded row a = %q, want null", loaded.Rows[1].Value("a"))
	}
}

func TestPersistWritesMetadata(t *testing.T) {
	cfg := newTestConfig(t)
	store := newStore(t, cfg)
	data := dataset.Dataset{
		Columns: []string{"a", "id"},
		Rows:    []dataset.Row{{"a": "x", "id": "1"}},
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := store.Persist(data, now); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	raw, err := os.ReadFile(cfg.Paths.MetadataFile)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var meta master.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta.LastUpdated != "2026-01-02T03:04:05Z" {
		t.Errorf("last_updated = %q, want %q", meta.LastUpdated, "2026-01-02T03:04:05Z")
	}
	if meta.RowCount != 1 || meta.ColumnCount != 2 {
		t.Errorf("counts = %d/%d, want 1/2", meta.RowCount, meta.ColumnCount)
	}
	if len(meta.Columns) != 2 || meta.Columns[0] != "a" || meta.Columns[1] != "id" {
		t.Errorf("columns = %v, want [a id]", meta.Columns)
	}

	read, err := store.ReadMetadata()
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	if !reflect.DeepEqual(read, meta) {
		t.Errorf("ReadMetadata() = %+v, want %+v", read, meta)
	}
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	cfg := newTestConfig(t)
	store := newStore(t, cfg)
	data := dataset.Dataset{Columns: []string{"id"}, Rows: []dataset.Row{{"id": "1"}}}

	if err := store.Persist(data, time.Now()); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(cfg.Paths.MasterFile))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Errorf("directory entries = %v, want master and metadata only", names)
	}
}

func TestPersistFailureKeepsPriorMaster(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Ingest.CSVEncoding = "iso-8859-1"
	store := newStore(t, cfg)

	good := dataset.Dataset{Columns: []string{"id"}, Rows: []dataset.Row{{"id": "1"}}}
	if err := store.Persist(good, time.Now()); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	before, err := os.ReadFile(cfg.Paths.MasterFile)
	if err != nil {
		t.Fatalf("read master: %v", err)
	}

	// Not representable in the configured charset, so serialization fails
	// before the rename.
	bad := dataset.Dataset{Columns: []string{"id"}, Rows: []dataset.Row{{"id": "日本"}}}
	if err := store.Persist(bad, time.Now()); !errors.Is(err, ingest.ErrPersistence) {
		t.Fatalf("Persist() error = %v, want persistence error", err)
	}

	after, err := os.ReadFile(cfg.Paths.MasterFile)
	if err != nil {
		t.Fatalf("read master: %v", err)
	}
	if string(after) != string(before) {
		t.Errorf("master changed after failed persist: %q -> %q", before, after)
	}

	entries, err := os.ReadDir(filepath.Dir(cfg.Paths.MasterFile))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("temp file left behind after failed persist")
	}
}

func TestLoadMissingMasterIsEmpty(t *testing.T) {
	store := newStore(t, newTestConfig(t))
	data := store.Load()
	if len(data.Rows) != 0 || len(data.Columns) != 0 {
		t.Errorf("Load() = %+v, want empty dataset", data)
	}
}

func TestLoadUnparseableMasterIsEmpty(t *testing.T) {
	cfg := newTestConfig(t)
	if err := os.WriteFile(cfg.Paths.MasterFile, []byte("id\n\xff\xfe\n"), 0o644); err != nil {
		t.Fatalf("write master: %v", err)
	}
	store := newStore(t, cfg)
	data := store.Load()
	if len(data.Rows) != 0 {
		t.Errorf("Load() rows = %d, want 0", len(data.Rows))
	}
}

func TestReadMetadataMissing(t *testing.T) {
	store := newStore(t, newTestConfig(t))
	if _, err := store.ReadMetadata(); !errors.Is(err, ingest.ErrPersistence) {
		t.Fatalf("ReadMetadata() error = %v, want persistence error", err)
	}
}
