package testsupport

import (
	"context"
	"testing"

	"dcpkit/internal/config"
	"dcpkit/internal/journal"
)

// MustOpenJournal opens a journal.Store for tests and registers cleanup.
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

// BeginRun starts a journal run for tests.
func BeginRun(t testing.TB, store *journal.Store, spec journal.RunSpec) *journal.Run {
	t.Helper()

	run, err := store.BeginRun(context.Background(), spec)
	if err != nil {
		t.Fatalf("store.BeginRun: %v", err)
	}
	return run
}
