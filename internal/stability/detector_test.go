package stability_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hopper/internal/config"
	"hopper/internal/ingest"
	"hopper/internal/logging"
	"hopper/internal/stability"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Ingest.ChecksumWaitSeconds = 0
	cfg.Ingest.ChunkSize = 8
	cfg.Ingest.MaxFileSizeMB = 1
	return &cfg
}

func TestFilterStableAcceptsQuietFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.csv")
	content := []byte("id,name\n1,alpha\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	detector := stability.NewDetector(newTestConfig(t), logging.NewNop())
	stable, skipped, err := detector.FilterStable(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("FilterStable: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %v", skipped)
	}
	if len(stable) != 1 {
		t.Fatalf("stable = %d, want 1", len(stable))
	}

	sum := sha256.Sum256(content)
	if want := hex.EncodeToString(sum[:]); stable[0].Checksum != want {
		t.Fatalf("checksum = %s, want %s", stable[0].Checksum, want)
	}
	if stable[0].Size != int64(len(content)) {
		t.Fatalf("size = %d, want %d", stable[0].Size, len(content))
	}
}

func TestFilterStableSkipsMissingFile(t *testing.T) {
	detector := stability.NewDetector(newTestConfig(t), logging.NewNop())
	missing := filepath.Join(t.TempDir(), "gone.csv")

	stable, skipped, err := detector.FilterStable(context.Background(), []string{missing})
	if err != nil {
		t.Fatalf("FilterStable: %v", err)
	}
	if len(stable) != 0 {
		t.Fatalf("unexpected stable entries: %v", stable)
	}
	if len(skipped) != 1 {
		t.Fatalf("skipped = %d, want 1", len(skipped))
	}
	if skipped[0].Reason != "unreadable" {
		t.Fatalf("reason = %q", skipped[0].Reason)
	}
	if !errors.Is(skipped[0].Err, ingest.ErrChecksum) {
		t.Fatalf("expected checksum classification, got %v", skipped[0].Err)
	}
}

func TestFilterStableSkipsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.csv")
	if err := os.WriteFile(path, make([]byte, 2*1024*1024), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	detector := stability.NewDetector(newTestConfig(t), logging.NewNop())
	stable, skipped, err := detector.FilterStable(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("FilterStable: %v", err)
	}
	if len(stable) != 0 {
		t.Fatalf("unexpected stable entries: %v", stable)
	}
	if len(skipped) != 1 || !strings.Contains(skipped[0].Reason, "max file size") {
		t.Fatalf("skipped = %v", skipped)
	}
}

func TestFilterStableHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.csv")
	if err := os.WriteFile(path, []byte("id\n1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := newTestConfig(t)
	cfg.Ingest.ChecksumWaitSeconds = 60
	detector := stability.NewDetector(cfg, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := detector.FilterStable(ctx, []string{path})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestFilterStableEmptyInput(t *testing.T) {
	detector := stability.NewDetector(newTestConfig(t), logging.NewNop())
	stable, skipped, err := detector.FilterStable(context.Background(), nil)
	if err != nil || stable != nil || skipped != nil {
		t.Fatalf("unexpected result: %v %v %v", stable, skipped, err)
	}
}

func TestFilterStableOrderPreserved(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 0, 3)
	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("id\n"+name+"\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		paths = append(paths, path)
	}

	detector := stability.NewDetector(newTestConfig(t), logging.NewNop())
	stable, _, err := detector.FilterStable(context.Background(), paths)
	if err != nil {
		t.Fatalf("FilterStable: %v", err)
	}
	if len(stable) != 3 {
		t.Fatalf("stable = %d, want 3", len(stable))
	}
	for i, candidate := range stable {
		if candidate.Path != paths[i] {
			t.Fatalf("order broken at %d: %s", i, candidate.Path)
		}
	}
}
