package fileutil

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside a locked output directory.
const LockFileName = ".dcpkit.lock"

// ErrLocked reports that another process holds the directory lock.
var ErrLocked = errors.New("directory is locked by another dcpkit process")

// DirLock is an advisory lock on an output directory.
type DirLock struct {
	path string
	lock *flock.Flock
}

// LockDir acquires an exclusive advisory lock on dir without blocking.
func LockDir(dir string) (*DirLock, error) {
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrLocked)
	}
	return &DirLock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *DirLock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Unlock releases the lock. It is safe to call on a nil lock.
func (l *DirLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
