package main

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatchProcessMergesAndStopsOnCancel(t *testing.T) {
	env := setupCLITestEnv(t)
	writeInboxFile(t, env, "clusters.csv", "id,name\n1,alpha\n")

	configFlag := env.configPath
	cctx := newCommandContext(&configFlag)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- runWatchProcess(ctx, cctx) }()

	// The watcher runs an immediate first cycle on startup.
	waitFor(t, 5*time.Second, func() bool {
		_, err := os.Stat(env.masterPath)
		return err == nil
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWatchProcess: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	if got := readFileString(t, env.masterPath); got != "id,name\n1,alpha\n" {
		t.Fatalf("master content mismatch: %q", got)
	}
}

func TestWatchProcessFailsPreflight(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.masterPath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	configFlag := env.configPath
	cctx := newCommandContext(&configFlag)

	if err := runWatchProcess(context.Background(), cctx); err == nil {
		t.Fatal("expected preflight failure when master path is a directory")
	}
}
