package deps

import (
	"errors"
	"strings"
	"testing"
)

func withLookPath(t *testing.T, available map[string]bool) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) {
		if available[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestCheckBinaries(t *testing.T) {
	withLookPath(t, map[string]bool{"ffmpeg": true, "apt": true})
	statuses := CheckBinaries([]Requirement{
		{Name: "ffmpeg", Command: "ffmpeg"},
		{Name: "pandoc", Command: "pandoc"},
		{Name: "unset", Command: ""},
	})
	if len(statuses) != 3 {
		t.Fatalf("got %d statuses", len(statuses))
	}
	if !statuses[0].Available {
		t.Error("ffmpeg should be available")
	}
	if statuses[1].Available {
		t.Error("pandoc should be missing")
	}
	if statuses[1].InstallHint != "sudo apt install pandoc" {
		t.Errorf("pandoc hint = %q", statuses[1].InstallHint)
	}
	if statuses[2].Detail != "command not configured" {
		t.Errorf("empty command detail = %q", statuses[2].Detail)
	}
}

func TestMissingRequiredSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "a", Available: true},
		{Name: "b", Available: false, Optional: true},
		{Name: "c", Available: false},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "c" {
		t.Errorf("missing = %+v", missing)
	}
}

func TestRequirementsForToolsSkipsUbiquitousAndDuplicates(t *testing.T) {
	reqs := RequirementsForTools([]string{"libreoffice", "test", "mv", "libreoffice", "ffmpeg"})
	if len(reqs) != 2 {
		t.Fatalf("reqs = %+v", reqs)
	}
	if reqs[0].Command != "libreoffice" || reqs[1].Command != "ffmpeg" {
		t.Errorf("reqs = %+v", reqs)
	}
}

func TestInstallHintPackageNameMapping(t *testing.T) {
	withLookPath(t, map[string]bool{"pacman": true})
	m := NewManager()
	if got := m.InstallHint("7z"); got != "sudo pacman -S p7zip" {
		t.Errorf("7z hint = %q", got)
	}
	if got := m.InstallHint("convert"); got != "sudo pacman -S imagemagick" {
		t.Errorf("convert hint = %q", got)
	}
}

func TestInstallHintWithoutPackageManager(t *testing.T) {
	withLookPath(t, nil)
	m := NewManager()
	if got := m.InstallHint("ffmpeg"); !strings.Contains(got, "manually") {
		t.Errorf("hint without package manager = %q", got)
	}
}
