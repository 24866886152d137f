// Package scanlock provides an advisory, cross-process lock that keeps two
// medialist processes from scanning into the same catalog at once.
package scanlock

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrScanLocked is returned when another process holds the scan lock.
var ErrScanLocked = errors.New("another medialist process is scanning this catalog")

// Lock is a non-blocking file lock stored next to the catalog database.
type Lock struct {
	path string
	lock *flock.Flock
}

// ForDatabase returns the scan lock for the catalog at dbPath.
func ForDatabase(dbPath string) *Lock {
	dir := filepath.Dir(dbPath)
	name := filepath.Base(dbPath) + ".scan.lock"
	return New(filepath.Join(dir, name))
}

// New returns a lock backed by the file at path.
func New(path string) *Lock {
	return &Lock{path: path, lock: flock.New(path)}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// TryLock acquires the lock without waiting. It returns ErrScanLocked when
// the lock is held elsewhere.
func (l *Lock) TryLock() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire scan lock %s: %w", l.path, err)
	}
	if !ok {
		return ErrScanLocked
	}
	return nil
}

// Unlock releases the lock. Unlocking a lock that is not held is a no-op.
func (l *Lock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release scan lock %s: %w", l.path, err)
	}
	return nil
}

// Locked reports whether this Lock currently holds the file lock.
func (l *Lock) Locked() bool {
	return l.lock.Locked()
}
