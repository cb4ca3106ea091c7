// Package fileutil provides the small filesystem helpers the
// conversion runner needs: copying, retried deletion of partial
// outputs, and directory preparation.
package fileutil

import (
	"io"
	"os"
	"time"
)

// CopyFile streams src to dst with default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

const (
	removeAttempts = 5
	removeBackoff  = 200 * time.Millisecond
)

// RemoveWithRetries deletes a file, retrying a few times with a short
// backoff and a permission fix. Conversion tools occasionally hold
// their output open briefly after exiting, or leave it read-only.
// A missing file counts as success.
func RemoveWithRetries(path string) error {
	var lastErr error
	for attempt := 0; attempt < removeAttempts; attempt++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
		_ = os.Chmod(path, 0o666)
		if err := os.Remove(path); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt < removeAttempts-1 {
			time.Sleep(removeBackoff)
		}
	}
	return lastErr
}

// EnsureDir creates the directory and parents when missing.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Exists reports whether the path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
