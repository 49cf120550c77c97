package main

import (
	"testing"
)

func TestMetadataBeforeFirstRun(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"metadata"}, env.configPath)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	requireContains(t, out, "No master dataset yet")
}

func TestMetadataAfterRun(t *testing.T) {
	env := setupCLITestEnv(t)
	writeInboxFile(t, env, "clusters.csv", "id,name\n1,alpha\n2,beta\n")

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, []string{"metadata"}, env.configPath)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	requireContains(t, out, "Rows:         2")
	requireContains(t, out, "id, name")
}

func TestMetadataJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	writeInboxFile(t, env, "clusters.csv", "id,name\n1,alpha\n2,beta\n")

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, []string{"metadata", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("metadata --json: %v", err)
	}
	requireContains(t, out, `"row_count": 2`)
	requireContains(t, out, `"column_count": 2`)
}
