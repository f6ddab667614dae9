package runlock_test

import (
	"errors"
	"testing"

	"mangarchive/internal/runlock"
	"mangarchive/internal/services"
)

func TestAcquireIsExclusivePerCollection(t *testing.T) {
	dir := t.TempDir()
	first, err := runlock.Acquire(dir, "slug-en")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}

	if _, err := runlock.Acquire(dir, "slug-en"); !errors.Is(err, services.ErrLocked) {
		t.Fatalf("expected ErrLocked for second acquire, got %v", err)
	}

	other, err := runlock.Acquire(dir, "slug-fr")
	if err != nil {
		t.Fatalf("expected other collection to lock independently: %v", err)
	}
	_ = other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	again, err := runlock.Acquire(dir, "slug-en")
	if err != nil {
		t.Fatalf("expected lock to be free after release: %v", err)
	}
	_ = again.Release()

	var nilLock *runlock.Lock
	if err := nilLock.Release(); err != nil {
		t.Fatalf("nil release returned error: %v", err)
	}
}
