package ingest_test

import (
	"context"
	"testing"

	"hopper/internal/ingest"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = ingest.WithCycleID(ctx, "cycle-123")
	ctx = ingest.WithSourceFile(ctx, "/inbox/batch.csv")

	if id, ok := ingest.CycleIDFromContext(ctx); !ok || id != "cycle-123" {
		t.Fatalf("unexpected cycle id: %v %v", id, ok)
	}
	if path, ok := ingest.SourceFileFromContext(ctx); !ok || path != "/inbox/batch.csv" {
		t.Fatalf("unexpected source file: %v %v", path, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = ingest.WithCycleID(ctx, "")
	ctx = ingest.WithSourceFile(ctx, "")
	if _, ok := ingest.CycleIDFromContext(ctx); ok {
		t.Fatal("expected no cycle id value")
	}
	if _, ok := ingest.SourceFileFromContext(ctx); ok {
		t.Fatal("expected no source file value")
	}
}
