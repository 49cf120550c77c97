package testsupport

import (
	"testing"

	"hopper/internal/config"
	"hopper/internal/journal"
)

// MustOpenJournal opens a journal.Store for tests and registers cleanup.
// With the journal disabled on the config it returns nil, which every
// journal method tolerates.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
