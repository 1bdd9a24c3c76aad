// Package runlock keeps two mpic runs from rewriting the same tree at once.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run already holds the lock.
var ErrLocked = errors.New("another mpic run is working on this directory")

// Lock is an exclusive advisory lock on a source root.
type Lock struct {
	fl *flock.Flock
}

// Path returns the lock file used for root.
func Path(root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(os.TempDir(), "mpic-"+hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for root without blocking.
func Acquire(root string) (*Lock, error) {
	return AcquireAt(Path(root))
}

// AcquireAt takes the lock file at path without blocking.
func AcquireAt(path string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. The lock file itself is left for reuse.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
