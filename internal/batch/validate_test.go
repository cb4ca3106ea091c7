package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"transmute/internal/format"
	"transmute/internal/rules"
)

func testGraph(t *testing.T) *format.Graph {
	t.Helper()
	src, err := rules.Load("")
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	return format.NewGraph(src, true)
}

func TestValidateSeparatesGoodAndBadFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFiles(t, dir, "a.jpg", "b.png", "c.jpg", "notes.xyz", "README")
	subdir := filepath.Join(dir, "sub.jpg")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "gone.png")

	v := Validate(testGraph(t), append(good, subdir, missing))

	if len(v.Valid) != 3 {
		t.Fatalf("valid = %v, want the three images", v.Valid)
	}
	if strings.Join(v.SourceFormats, ",") != "JPG,PNG" {
		t.Errorf("source formats = %v, want [JPG PNG] in first-seen order", v.SourceFormats)
	}
	if len(v.Errors) != 4 {
		t.Fatalf("errors = %+v, want 4", v.Errors)
	}

	byFile := make(map[string]string)
	for _, e := range v.Errors {
		byFile[e.File] = e.Message
	}
	if msg := byFile["notes.xyz"]; !strings.Contains(msg, "unsupported format XYZ") {
		t.Errorf("notes.xyz message = %q", msg)
	}
	if msg := byFile["README"]; !strings.Contains(msg, "cannot determine") {
		t.Errorf("README message = %q", msg)
	}
	if msg := byFile["sub.jpg"]; !strings.Contains(msg, "directory") {
		t.Errorf("sub.jpg message = %q", msg)
	}
	if msg := byFile["gone.png"]; !strings.Contains(msg, "not found") {
		t.Errorf("gone.png message = %q", msg)
	}
}

func TestValidateCompoundExtensions(t *testing.T) {
	dir := t.TempDir()
	files := writeFiles(t, dir, "backup.tar.gz", "old.tgz")

	v := Validate(testGraph(t), files)
	if len(v.Valid) != 2 {
		t.Fatalf("valid = %v", v.Valid)
	}
	if strings.Join(v.SourceFormats, ",") != "TAR.GZ,TGZ" {
		t.Errorf("source formats = %v", v.SourceFormats)
	}
}
