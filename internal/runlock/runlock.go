// Package runlock keeps two runs from writing into the same output root.
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

// ErrLocked is returned when another run holds the lock.
var ErrLocked = errors.New("another esdemedia run is using this output directory")

// Lock is a held run lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Path returns <lockDir>/esdemedia-<hash>.lock for an output root.
func Path(lockDir, outputDir string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(outputDir)))
	return filepath.Join(lockDir, "esdemedia-"+hex.EncodeToString(sum[:])[:16]+".lock")
}

// Acquire takes the lock for outputDir without blocking.
func Acquire(lockDir, outputDir string) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	path := Path(lockDir, outputDir)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// File returns the lock file location.
func (l *Lock) File() string {
	return l.path
}

// Release drops the lock. The lock file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
