package testsupport

import (
	"context"
	"testing"

	"loom/internal/config"
	"loom/internal/ledger"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BeginRun starts a ledger run for tests using the provided store.
func BeginRun(t testing.TB, store *ledger.Store, audio, transcript string, tiers ...string) *ledger.Run {
	t.Helper()

	run, err := store.BeginRun(context.Background(), ledger.RunSpec{
		AudioPath:      audio,
		TranscriptPath: transcript,
		Tiers:          tiers,
	})
	if err != nil {
		t.Fatalf("store.BeginRun: %v", err)
	}
	return run
}
