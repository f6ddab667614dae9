// Package runlock prevents two mangarchive processes from working on the same
// collection at once.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"mangarchive/internal/services"
)

// Lock is an exclusive advisory lock on one collection.
type Lock struct {
	path string
	lock *flock.Flock
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Acquire takes the lock for collectionDir under lockDir without blocking.
// A held lock yields an error marked services.ErrLocked.
func Acquire(lockDir, collectionDir string) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	path := filepath.Join(lockDir, collectionDir+".lock")
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "", "", fmt.Sprintf("another run is archiving %s (lock %s)", collectionDir, path), nil)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Release drops the lock. Safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
