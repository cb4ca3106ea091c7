package format

import (
	"path/filepath"
	"strings"
)

// FormatOf detects a file's format from its name. Compound archive
// suffixes are matched before single extensions so "backup.tar.gz"
// detects as TAR.GZ rather than GZ. Returns the raw (possibly alias)
// spelling in upper case, or "" when the name has no extension.
func (g *Graph) FormatOf(path string) string {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range g.compoundSuffixes {
		if strings.HasSuffix(name, "."+suffix) && len(name) > len(suffix)+1 {
			return strings.ToUpper(suffix)
		}
	}
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

// SplitName splits a file name into stem and extension, where the
// extension is the longest known compound suffix when one applies.
// The returned extension keeps its leading dot; for "a.tar.gz" the
// result is ("a", ".tar.gz").
func (g *Graph) SplitName(name string) (stem, ext string) {
	lower := strings.ToLower(name)
	for _, suffix := range g.compoundSuffixes {
		dotted := "." + suffix
		if strings.HasSuffix(lower, dotted) && len(lower) > len(dotted) {
			return name[:len(name)-len(dotted)], name[len(name)-len(dotted):]
		}
	}
	ext = filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// ExtensionFor converts a format name to its file extension form:
// lower case with a leading dot.
func ExtensionFor(format string) string {
	return "." + strings.ToLower(format)
}
