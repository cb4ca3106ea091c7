package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"transmute/internal/format"
)

// TargetPath derives the output path for a conversion: the source's
// stem with the target format's extension, in outputDir when given and
// next to the source otherwise. Compound extensions are replaced as a
// whole, so "backup.tar.bz2" converting to TAR.XZ becomes
// "backup.tar.xz".
func TargetPath(g *format.Graph, sourcePath, targetFormat, outputDir string) string {
	stem, _ := g.SplitName(filepath.Base(sourcePath))
	name := stem + format.ExtensionFor(targetFormat)
	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(sourcePath), name)
}

// EnsureUnique returns a path that does not collide with an existing
// file, appending " (1)", " (2)", ... before the extension until the
// name is free.
func EnsureUnique(g *format.Graph, path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	dir := filepath.Dir(path)
	stem, ext := g.SplitName(filepath.Base(path))
	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, counter, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
