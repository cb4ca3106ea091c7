package batch

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"transmute/internal/faults"
	"transmute/internal/fileutil"
)

// AcquireLock takes the single-active-conversion lock. Exactly one
// conversion, single or batch, runs per state directory at a time.
// The caller must Unlock the returned lock when the conversion ends.
func AcquireLock(path string) (*flock.Flock, error) {
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("prepare lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire conversion lock: %w", err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrValidation, "batch", "lock",
			"another conversion is already running; wait for it to finish", nil)
	}
	return lock, nil
}
