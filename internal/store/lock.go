package store

import (
	"errors"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = "doneit.lock"

// ErrLocked means another process holds the store lock.
var ErrLocked = errors.New("store is locked by another process")

// AcquireLock takes the exclusive store lock, non-blocking. The caller must
// Unlock the returned flock when done.
func (s Store) AcquireLock() (*flock.Flock, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(s.Dir, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return fl, nil
}
