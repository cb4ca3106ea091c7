package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"transmute/internal/fileutil"
)

const outputDirPrefix = "converted-"

// allocateOutputDir creates a fresh sibling directory for the batch
// results when the batch is large enough. Batches at or below the
// threshold convert in place and get an empty path back.
func allocateOutputDir(baseDir, targetFormat string, fileCount, threshold int) (string, error) {
	if fileCount <= threshold {
		return "", nil
	}
	name := outputDirPrefix + strings.ToLower(targetFormat)
	path := filepath.Join(baseDir, name)
	for n := 1; fileutil.Exists(path); n++ {
		path = filepath.Join(baseDir, fmt.Sprintf("%s_%d", name, n))
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", path, err)
	}
	return path, nil
}

// removeIfEmpty deletes an allocated output directory that the batch
// never wrote into.
func removeIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	_ = os.Remove(dir)
}
