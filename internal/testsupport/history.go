package testsupport

import (
	"context"
	"testing"

	"mangarchive/internal/config"
	"mangarchive/internal/history"
)

// MustOpenHistory opens the run ledger at cfg.HistoryPath and closes it when
// the test finishes.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
