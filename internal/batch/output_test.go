package batch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAllocateOutputDirRespectsThreshold(t *testing.T) {
	dir := t.TempDir()

	path, err := allocateOutputDir(dir, "PNG", 5, 5)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if path != "" {
		t.Errorf("batch at the threshold should convert in place, got %q", path)
	}

	path, err = allocateOutputDir(dir, "PNG", 6, 5)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if path != filepath.Join(dir, "converted-png") {
		t.Errorf("path = %q", path)
	}
	if info, statErr := os.Stat(path); statErr != nil || !info.IsDir() {
		t.Errorf("directory was not created: %v", statErr)
	}
}

func TestAllocateOutputDirAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "converted-pdf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "converted-pdf_1"), 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := allocateOutputDir(dir, "PDF", 10, 5)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if path != filepath.Join(dir, "converted-pdf_2") {
		t.Errorf("path = %q, want converted-pdf_2", path)
	}
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatal(err)
	}
	removeIfEmpty(empty)
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Error("empty directory should have been removed")
	}

	full := filepath.Join(dir, "full")
	if err := os.Mkdir(full, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(full, "out.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	removeIfEmpty(full)
	if _, err := os.Stat(full); err != nil {
		t.Error("non-empty directory must be kept")
	}
}
