package testsupport

import (
	"path/filepath"
	"testing"

	"hopper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Timings are collapsed so cycles run instantly, and all directories exist
// by the time it returns.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WatchDir = filepath.Join(base, "inbox")
	cfgVal.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfgVal.Paths.MasterFile = filepath.Join(base, "master.csv")
	cfgVal.Paths.MetadataFile = filepath.Join(base, "master.meta.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Ingest.KeyColumn = "id"
	cfgVal.Ingest.ChecksumWaitSeconds = 0
	cfgVal.Journal.Path = filepath.Join(base, "journal.db")
	cfgVal.Locking.TimeoutSeconds = 2
	cfgVal.Locking.RetryIntervalMillis = 10
	cfgVal.Watch.PollIntervalSeconds = 1
	cfgVal.Watch.SettleSeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithKeyColumn sets the merge key column on the test config.
func WithKeyColumn(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.KeyColumn = name
	}
}

// WithRequiredColumns sets the required column list on the test config.
func WithRequiredColumns(columns ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.RequiredColumns = columns
	}
}

// WithJournalDisabled turns off journalling on the test config.
func WithJournalDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WatchDir)
}
