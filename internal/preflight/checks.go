package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"hopper/internal/config"
	"hopper/internal/journal"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFileWritable verifies that the file can be created or replaced.
// A missing file passes as long as its parent directory is writable,
// since the store creates the master and metadata files on first persist.
func CheckFileWritable(name, path string) Result {
	parent := filepath.Dir(path)
	parentInfo, err := os.Stat(parent)
	if err != nil || !parentInfo.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: parent directory missing)", path)}
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: parent directory not writable: %v)", path, err)}
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCSVSettings verifies that the configured encoding and delimiter resolve.
func CheckCSVSettings(cfg *config.Config) Result {
	const name = "CSV settings"

	if _, err := config.ResolveEncoding(cfg.Ingest.CSVEncoding); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	delimiter, err := cfg.DelimiterRune()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	encodingName := strings.ToLower(strings.TrimSpace(cfg.Ingest.CSVEncoding))
	if encodingName == "" {
		encodingName = "utf-8"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("encoding %s, delimiter %q", encodingName, delimiter)}
}

// CheckJournal verifies that the journal database opens and answers queries.
// Schema mismatches surface here with the recovery hint from the journal
// package rather than on the first recorded ingest.
func CheckJournal(ctx context.Context, cfg *config.Config) Result {
	const name = "Journal"

	store, err := journal.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.JournalPath(), err)}
	}
	defer store.Close()

	if _, err := store.Stats(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.JournalPath(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema ok)", cfg.JournalPath())}
}
