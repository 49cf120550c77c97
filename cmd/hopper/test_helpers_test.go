package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type cliTestEnv struct {
	baseDir     string
	configPath  string
	watchDir    string
	archiveDir  string
	masterPath  string
	metaPath    string
	journalPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		baseDir:     base,
		configPath:  filepath.Join(base, "config.toml"),
		watchDir:    filepath.Join(base, "inbox"),
		archiveDir:  filepath.Join(base, "archive"),
		masterPath:  filepath.Join(base, "master.csv"),
		metaPath:    filepath.Join(base, "master.meta.json"),
		journalPath: filepath.Join(base, "journal.db"),
	}
	writeTestConfig(t, env, true)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv, journalEnabled bool) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
watch_dir = %q
archive_dir = %q
master_file = %q
metadata_file = %q
log_dir = %q

[ingest]
key_column = "id"
checksum_wait_seconds = 0

[locking]
timeout_seconds = 2
retry_interval_millis = 10

[journal]
enabled = %t
path = %q

[logging]
format = "json"
level = "error"
`,
		env.watchDir,
		env.archiveDir,
		env.masterPath,
		env.metaPath,
		filepath.Join(env.baseDir, "logs"),
		journalEnabled,
		env.journalPath,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeInboxFile(t *testing.T, env *cliTestEnv, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(env.watchDir, 0o755); err != nil {
		t.Fatalf("mkdir watch dir: %v", err)
	}
	path := filepath.Join(env.watchDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write inbox file: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func readFileString(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(raw)
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
