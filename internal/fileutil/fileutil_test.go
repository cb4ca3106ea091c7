package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Fatalf("dst content = %q, err = %v", data, err)
	}
}

func TestRemoveWithRetriesReadOnlyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o444); err != nil {
		t.Fatal(err)
	}
	if err := RemoveWithRetries(path); err != nil {
		t.Fatalf("RemoveWithRetries: %v", err)
	}
	if Exists(path) {
		t.Error("file should be gone")
	}
}

func TestRemoveWithRetriesMissingFile(t *testing.T) {
	if err := RemoveWithRetries(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Errorf("missing file should be success, got %v", err)
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		t.Fatalf("stat: %v", err)
	}
}
