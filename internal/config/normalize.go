package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeLocking()
	c.normalizeWatch()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WatchDir, err = expandPath(c.Paths.WatchDir); err != nil {
		return fmt.Errorf("paths.watch_dir: %w", err)
	}
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if c.Paths.MasterFile, err = expandPath(c.Paths.MasterFile); err != nil {
		return fmt.Errorf("paths.master_file: %w", err)
	}
	if c.Paths.MetadataFile, err = expandPath(c.Paths.MetadataFile); err != nil {
		return fmt.Errorf("paths.metadata_file: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIngest() {
	c.Ingest.KeyColumn = strings.TrimSpace(c.Ingest.KeyColumn)

	if len(c.Ingest.SupportedExtensions) == 0 {
		c.Ingest.SupportedExtensions = []string{".csv"}
	}
	exts := make([]string, 0, len(c.Ingest.SupportedExtensions))
	seen := make(map[string]struct{}, len(c.Ingest.SupportedExtensions))
	for _, ext := range c.Ingest.SupportedExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Ingest.SupportedExtensions = exts

	required := make([]string, 0, len(c.Ingest.RequiredColumns))
	seenCols := make(map[string]struct{}, len(c.Ingest.RequiredColumns))
	for _, col := range c.Ingest.RequiredColumns {
		trimmed := strings.TrimSpace(col)
		if trimmed == "" {
			continue
		}
		if _, exists := seenCols[trimmed]; exists {
			continue
		}
		seenCols[trimmed] = struct{}{}
		required = append(required, trimmed)
	}
	c.Ingest.RequiredColumns = required

	if c.Ingest.ChecksumWaitSeconds < 0 {
		c.Ingest.ChecksumWaitSeconds = 0
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = defaultChunkSize
	}
	if c.Ingest.MaxFileSizeMB <= 0 {
		c.Ingest.MaxFileSizeMB = defaultMaxFileSizeMB
	}
	if c.Ingest.CSVDelimiter == "" {
		c.Ingest.CSVDelimiter = defaultCSVDelimiter
	}
	c.Ingest.CSVEncoding = strings.ToLower(strings.TrimSpace(c.Ingest.CSVEncoding))
	if c.Ingest.CSVEncoding == "" {
		c.Ingest.CSVEncoding = defaultCSVEncoding
	}
	if c.Ingest.MaxKeysInSummary <= 0 {
		c.Ingest.MaxKeysInSummary = defaultMaxKeysInSummary
	}
}

func (c *Config) normalizeLocking() {
	if c.Locking.TimeoutSeconds <= 0 {
		c.Locking.TimeoutSeconds = defaultLockTimeoutSeconds
	}
	if c.Locking.RetryIntervalMillis <= 0 {
		c.Locking.RetryIntervalMillis = defaultLockRetryMillis
	}
}

func (c *Config) normalizeWatch() {
	if c.Watch.PollIntervalSeconds <= 0 {
		c.Watch.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Watch.SettleSeconds < 0 {
		c.Watch.SettleSeconds = 0
	}
}

func (c *Config) normalizeJournal() error {
	c.Journal.Path = strings.TrimSpace(c.Journal.Path)
	if c.Journal.Path != "" {
		expanded, err := expandPath(c.Journal.Path)
		if err != nil {
			return fmt.Errorf("journal.path: %w", err)
		}
		c.Journal.Path = expanded
	}
	if c.Journal.RetentionDays < 0 {
		c.Journal.RetentionDays = 0
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
