package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckFileReadable(path); !r.Passed {
		t.Errorf("readable file failed: %s", r.Detail)
	}
	if r := CheckFileReadable(filepath.Join(dir, "absent.png")); r.Passed {
		t.Error("missing file should fail")
	}
	if r := CheckFileReadable(dir); r.Passed {
		t.Error("directory should fail the file check")
	}
}

func TestCheckDirectoryWritable(t *testing.T) {
	dir := t.TempDir()
	if r := CheckDirectoryWritable(dir); !r.Passed {
		t.Errorf("temp dir should be writable: %s", r.Detail)
	}
	if r := CheckDirectoryWritable(filepath.Join(dir, "missing")); r.Passed {
		t.Error("missing dir should fail")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	orig := statfs
	t.Cleanup(func() { statfs = orig })

	statfs = func(string) (uint64, error) { return 10 << 30, nil }
	if r := CheckDiskSpace("/out", 1<<30); !r.Passed {
		t.Errorf("ample space should pass: %s", r.Detail)
	}

	statfs = func(string) (uint64, error) { return 1 << 20, nil }
	r := CheckDiskSpace("/out", 1<<30)
	if r.Passed {
		t.Fatal("insufficient space should fail")
	}
	if !strings.Contains(r.Detail, "needed") {
		t.Errorf("detail should show the requirement, got %q", r.Detail)
	}
}

func TestForConversionAndFirstFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.wav")
	if err := os.WriteFile(input, make([]byte, 128), 0o644); err != nil {
		t.Fatal(err)
	}
	results := ForConversion(input, dir)
	if len(results) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(results))
	}
	if _, failed := FirstFailure(results); failed {
		t.Errorf("all checks should pass, got %+v", results)
	}

	bad := ForConversion(filepath.Join(dir, "absent.wav"), dir)
	fail, ok := FirstFailure(bad)
	if !ok || fail.Name != "Input file" {
		t.Errorf("expected input check to fail first, got %+v", fail)
	}
}
