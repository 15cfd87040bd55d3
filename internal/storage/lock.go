package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockName is the lock file kept in an output directory while a run writes to it.
const LockName = ".refsplit.lock"

// ErrOutputBusy is returned when another run holds an output directory's lock.
var ErrOutputBusy = errors.New("output directory is in use by another run")

// LockDir creates dir if needed and takes its exclusive lock without
// blocking. The returned function releases it.
func LockDir(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputBusy, dir)
	}
	return lock.Unlock, nil
}
