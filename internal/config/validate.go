package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	checks := []struct {
		key   string
		value string
	}{
		{"paths.watch_dir", c.Paths.WatchDir},
		{"paths.archive_dir", c.Paths.ArchiveDir},
		{"paths.master_file", c.Paths.MasterFile},
		{"paths.metadata_file", c.Paths.MetadataFile},
		{"paths.log_dir", c.Paths.LogDir},
	}
	for _, check := range checks {
		if strings.TrimSpace(check.value) == "" {
			return fmt.Errorf("%s must be set", check.key)
		}
	}
	if c.Paths.MasterFile == c.Paths.MetadataFile {
		return errors.New("paths.master_file and paths.metadata_file must differ")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.KeyColumn == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/hopper/config.toml"
		}
		return fmt.Errorf("ingest.key_column must be set; edit %s (create with 'hopper config init')", defaultPath)
	}
	for _, ext := range c.Ingest.SupportedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("ingest.supported_extensions entries must start with a dot, got %q", ext)
		}
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if _, err := ResolveEncoding(c.Ingest.CSVEncoding); err != nil {
		return fmt.Errorf("ingest.csv_encoding: %w", err)
	}
	return nil
}

// DelimiterRune returns the configured CSV delimiter as a rune, rejecting
// values encoding/csv cannot use as a field separator.
func (c *Config) DelimiterRune() (rune, error) {
	delim := c.Ingest.CSVDelimiter
	if utf8.RuneCountInString(delim) != 1 {
		return 0, fmt.Errorf("ingest.csv_delimiter must be a single character, got %q", delim)
	}
	r, _ := utf8.DecodeRuneInString(delim)
	switch r {
	case '\n', '\r', '"', utf8.RuneError:
		return 0, fmt.Errorf("ingest.csv_delimiter %q is not usable as a field separator", delim)
	}
	return r, nil
}
