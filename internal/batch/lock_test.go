package batch

import (
	"errors"
	"path/filepath"
	"testing"

	"transmute/internal/faults"
)

func TestAcquireLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "transmute.lock")

	first, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := AcquireLock(path); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("second acquire error = %v, want ErrValidation", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	second, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	_ = second.Unlock()
}
