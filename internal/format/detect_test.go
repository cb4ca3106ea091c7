package format

import "testing"

func TestFormatOf(t *testing.T) {
	g := newTestGraph(t, true)
	cases := []struct {
		path string
		want string
	}{
		{"/tmp/photo.jpg", "JPG"},
		{"/tmp/clip.MP4", "MP4"},
		{"/tmp/backup.tar.gz", "TAR.GZ"},
		{"/tmp/backup.tar.bz2", "TAR.BZ2"},
		{"/tmp/archive.tgz", "TGZ"},
		{"/tmp/noext", ""},
		{"/tmp/.hidden", ""},
		{"/tmp/report.final.pdf", "PDF"},
	}
	for _, tc := range cases {
		if got := g.FormatOf(tc.path); got != tc.want {
			t.Errorf("FormatOf(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestSplitName(t *testing.T) {
	g := newTestGraph(t, true)
	cases := []struct {
		name     string
		wantStem string
		wantExt  string
	}{
		{"photo.jpg", "photo", ".jpg"},
		{"backup.tar.gz", "backup", ".tar.gz"},
		{"report.final.pdf", "report.final", ".pdf"},
		{"noext", "noext", ""},
	}
	for _, tc := range cases {
		stem, ext := g.SplitName(tc.name)
		if stem != tc.wantStem || ext != tc.wantExt {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tc.name, stem, ext, tc.wantStem, tc.wantExt)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	if got := ExtensionFor("TAR.GZ"); got != ".tar.gz" {
		t.Errorf("ExtensionFor(TAR.GZ) = %q", got)
	}
	if got := ExtensionFor("PNG"); got != ".png" {
		t.Errorf("ExtensionFor(PNG) = %q", got)
	}
}
