package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hopper/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileWritable_Missing(t *testing.T) {
	result := CheckFileWritable("test", filepath.Join(t.TempDir(), "master.csv"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable file, got: %s", result.Detail)
	}
}

func TestCheckFileWritable_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	if err := os.WriteFile(path, []byte("id\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckFileWritable("test", path)
	if !result.Passed {
		t.Fatalf("expected pass for existing file, got: %s", result.Detail)
	}
}

func TestCheckFileWritable_ParentMissing(t *testing.T) {
	result := CheckFileWritable("test", filepath.Join(t.TempDir(), "nope", "master.csv"))
	if result.Passed {
		t.Fatal("expected failure for missing parent directory")
	}
}

func TestCheckFileWritable_Directory(t *testing.T) {
	result := CheckFileWritable("test", t.TempDir())
	if result.Passed {
		t.Fatal("expected failure for directory path")
	}
}

func TestCheckCSVSettings_OK(t *testing.T) {
	cfg := config.Default()
	result := CheckCSVSettings(&cfg)
	if !result.Passed {
		t.Fatalf("expected pass for default settings, got: %s", result.Detail)
	}
}

func TestCheckCSVSettings_BadEncoding(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.CSVEncoding = "not-a-charset"
	result := CheckCSVSettings(&cfg)
	if result.Passed {
		t.Fatal("expected failure for unknown encoding")
	}
}

func TestCheckCSVSettings_BadDelimiter(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.CSVDelimiter = "ab"
	result := CheckCSVSettings(&cfg)
	if result.Passed {
		t.Fatal("expected failure for multi-rune delimiter")
	}
}

func TestCheckJournal_OK(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Enabled = true
	cfg.Journal.Path = filepath.Join(t.TempDir(), "journal.db")

	result := CheckJournal(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass for fresh journal, got: %s", result.Detail)
	}
}

func TestCheckJournal_UnopenablePath(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Enabled = true
	cfg.Journal.Path = filepath.Join(t.TempDir(), "missing", "journal.db")

	result := CheckJournal(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure for journal path in missing directory")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_AllChecksPass(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WatchDir = filepath.Join(base, "inbox")
	cfg.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.MasterFile = filepath.Join(base, "master.csv")
	cfg.Paths.MetadataFile = filepath.Join(base, "master.meta.json")
	cfg.Journal.Enabled = true
	cfg.Journal.Path = filepath.Join(base, "journal.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), &cfg)
	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d", len(results))
	}
	for _, result := range results {
		if !result.Passed {
			t.Errorf("check %q failed: %s", result.Name, result.Detail)
		}
	}
	if Failed(results) {
		t.Fatal("Failed should report false when every check passes")
	}
}

func TestRunAll_SkipsJournalWhenDisabled(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WatchDir = filepath.Join(base, "inbox")
	cfg.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.MasterFile = filepath.Join(base, "master.csv")
	cfg.Paths.MetadataFile = filepath.Join(base, "master.meta.json")
	cfg.Journal.Enabled = false
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), &cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, result := range results {
		if result.Name == "Journal" {
			t.Fatal("journal check should be skipped when disabled")
		}
	}
}

func TestFailed_MixedResults(t *testing.T) {
	results := []Result{
		{Name: "a", Passed: true},
		{Name: "b", Passed: false, Detail: "broken"},
	}
	if !Failed(results) {
		t.Fatal("Failed should report true when any check fails")
	}
}
