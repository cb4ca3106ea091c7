package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBuiltinsOnly(t *testing.T) {
	src, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Version() == "" {
		t.Error("expected a built-in document version")
	}
	tmpl, ok := src.TemplateFor("image", "PNG")
	if !ok {
		t.Fatal("expected an image default template")
	}
	if len(tmpl.Steps) != 1 {
		t.Fatalf("expected single-step image template, got %d steps", len(tmpl.Steps))
	}
	ico, ok := src.TemplateFor("image", "ICO")
	if !ok {
		t.Fatal("expected an ICO override template")
	}
	if ico.Joined() == tmpl.Joined() {
		t.Error("ICO override should differ from the image default")
	}
	office, ok := src.TemplateFor("office", "PDF")
	if !ok {
		t.Fatal("expected an office PDF template")
	}
	if len(office.Steps) != 2 {
		t.Fatalf("expected two-step office template, got %d steps", len(office.Steps))
	}
}

func TestLoadMissingUserFileFallsBackToBuiltins(t *testing.T) {
	src, err := Load(filepath.Join(t.TempDir(), "no-such-rules.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := src.TemplateFor("video", "MKV"); !ok {
		t.Error("expected built-in video template")
	}
}

func TestUserRulesShadowBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	userDoc := `
version = "2.0.0"

[categories.image.by_target]
PNG = "magick {input} -strip {output}"

[[special]]
from = "GIF"
to = "MP4"
command = "ffmpeg -i {input} -c:v libx264 -y {output}"

[restricted]
allow = ["RAW"]

[aliases]
JPE = "JPEG"

[default_targets]
image = ["WEBP"]
`
	if err := os.WriteFile(path, []byte(userDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := src.Version(); got != "2.0.0" {
		t.Errorf("version = %q, want user version", got)
	}
	png, ok := src.TemplateFor("image", "PNG")
	if !ok || png.Joined() != "magick {input} -strip {output}" {
		t.Errorf("PNG template = %q, want user override", png.Joined())
	}
	if _, ok := src.TemplateFor("image", "JPEG"); !ok {
		t.Error("built-in image default should survive the merge")
	}

	var gifRules []SpecialRule
	for _, sp := range src.SpecialRules() {
		if sp.From == "GIF" && sp.To == "MP4" {
			gifRules = append(gifRules, sp)
		}
	}
	if len(gifRules) != 1 {
		t.Fatalf("expected the user GIF→MP4 rule to shadow the built-in, got %d rules", len(gifRules))
	}
	if gifRules[0].Origin != OriginUser {
		t.Errorf("surviving GIF→MP4 rule origin = %s, want user", gifRules[0].Origin)
	}

	if !src.Restricted("RAW") {
		t.Error("RAW should remain restricted")
	}
	if !src.RestrictedAllowed("RAW") {
		t.Error("RAW should be re-allowed by the user document")
	}
	if src.RestrictedAllowed("CR2") {
		t.Error("CR2 was never re-allowed")
	}

	if got := src.Alias("JPE"); got != "JPEG" {
		t.Errorf("Alias(JPE) = %q, want JPEG", got)
	}
	if got := src.Alias("JPG"); got != "JPEG" {
		t.Errorf("built-in alias JPG→JPEG lost in merge, got %q", got)
	}

	if ts := src.DefaultTargets("image"); len(ts) != 1 || ts[0] != "WEBP" {
		t.Errorf("DefaultTargets(image) = %v, want user override [WEBP]", ts)
	}
}

func TestExcludedLookup(t *testing.T) {
	src, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	reason, ok := src.Excluded("ico", "svg")
	if !ok || reason == "" {
		t.Errorf("expected ICO→SVG exclusion with a reason, got ok=%v reason=%q", ok, reason)
	}
	if _, ok := src.Excluded("PNG", "JPEG"); ok {
		t.Error("PNG→JPEG should not be excluded")
	}
}

func TestCoerceTemplateRejectsBadShapes(t *testing.T) {
	if _, err := coerceTemplate(42); err == nil {
		t.Error("expected error for non-string template")
	}
	if _, err := coerceTemplate([]any{"ok", 7}); err == nil {
		t.Error("expected error for mixed-type step list")
	}
	if _, err := coerceTemplate("   "); err == nil {
		t.Error("expected error for blank template")
	}
}

func TestLoadRejectsIncompleteSpecialRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	bad := `
[[special]]
from = "GIF"
to = "MP4"
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for special rule without a command")
	}
}
