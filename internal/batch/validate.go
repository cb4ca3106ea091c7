package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"transmute/internal/format"
)

// Validation is the outcome of the pre-batch validation pass: the
// files worth converting, their distinct source formats in first-seen
// order, and one error per rejected file.
type Validation struct {
	Valid         []string
	SourceFormats []string
	Errors        []FileError
}

// Validate filters the requested files down to readable ones with a
// recognizable format. It never fails as a whole; rejects are
// reported per file.
func Validate(g *format.Graph, files []string) Validation {
	var v Validation
	seenFormats := make(map[string]struct{})

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			v.Errors = append(v.Errors, FileError{
				File:    filepath.Base(file),
				Message: "file not found",
			})
			continue
		}
		if info.IsDir() {
			v.Errors = append(v.Errors, FileError{
				File:    filepath.Base(file),
				Message: "is a directory, not a file",
			})
			continue
		}
		f := g.FormatOf(file)
		if f == "" {
			v.Errors = append(v.Errors, FileError{
				File:    filepath.Base(file),
				Message: "cannot determine the file format",
			})
			continue
		}
		if !g.Known(f) {
			v.Errors = append(v.Errors, FileError{
				File:    filepath.Base(file),
				Message: fmt.Sprintf("unsupported format %s", f),
			})
			continue
		}
		v.Valid = append(v.Valid, file)
		if _, ok := seenFormats[f]; !ok {
			seenFormats[f] = struct{}{}
			v.SourceFormats = append(v.SourceFormats, f)
		}
	}
	return v
}
