package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvConfigPath names the environment variable that overrides the config file
// location when no --config flag is given.
const EnvConfigPath = "HOPPER_CONFIG"

// Paths contains directory and file location configuration.
type Paths struct {
	WatchDir     string `toml:"watch_dir"`
	ArchiveDir   string `toml:"archive_dir"`
	MasterFile   string `toml:"master_file"`
	MetadataFile string `toml:"metadata_file"`
	LogDir       string `toml:"log_dir"`
}

// Ingest contains configuration for file detection, validation, and merging.
type Ingest struct {
	KeyColumn            string   `toml:"key_column"`
	RequiredColumns      []string `toml:"required_columns"`
	SupportedExtensions  []string `toml:"supported_extensions"`
	ChecksumWaitSeconds  int      `toml:"checksum_wait_seconds"`
	ChunkSize            int      `toml:"chunk_size"`
	MaxFileSizeMB        int      `toml:"max_file_size_mb"`
	CSVDelimiter         string   `toml:"csv_delimiter"`
	CSVEncoding          string   `toml:"csv_encoding"`
	MaxKeysInSummary     int      `toml:"max_keys_in_summary"`
	PruneObsoleteColumns bool     `toml:"prune_obsolete_columns"`
}

// Locking contains configuration for the cross-process master lock.
type Locking struct {
	TimeoutSeconds      int `toml:"timeout_seconds"`
	RetryIntervalMillis int `toml:"retry_interval_millis"`
}

// Watch contains configuration for daemon watch mode.
type Watch struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	SettleSeconds       int `toml:"settle_seconds"`
}

// Journal contains configuration for the ingest history store.
type Journal struct {
	Enabled       bool   `toml:"enabled"`
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for hopper.
//
// Configuration sections by subsystem:
//   - Paths: watch/archive directories and master dataset locations
//   - Ingest: stability detection, validation, and merge behavior
//   - Locking: master lock acquisition timeout and retry cadence
//   - Watch: daemon polling and settle timing
//   - Journal: ingest history store location and retention
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Ingest  Ingest  `toml:"ingest"`
	Locking Locking `toml:"locking"`
	Watch   Watch   `toml:"watch"`
	Journal Journal `toml:"journal"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/hopper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("hopper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories hopper needs to operate.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.WatchDir,
		c.Paths.ArchiveDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.MasterFile),
		filepath.Dir(c.Paths.MetadataFile),
	}
	if c.Journal.Enabled {
		dirs = append(dirs, filepath.Dir(c.JournalPath()))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MasterLockPath returns the lock file path guarding the master dataset.
func (c *Config) MasterLockPath() string {
	return c.Paths.MasterFile + ".lock"
}

// JournalPath returns the resolved journal database path.
func (c *Config) JournalPath() string {
	if strings.TrimSpace(c.Journal.Path) != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.Paths.LogDir, "journal.db")
}

// MatchesExtension reports whether a file name has one of the supported
// ingest extensions. Matching is case-insensitive on the name.
func (c *Config) MatchesExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range c.Ingest.SupportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
