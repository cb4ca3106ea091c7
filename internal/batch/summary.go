package batch

import "time"

// Request describes a batch run. TargetFormat may be empty, in which
// case a default target is selected from the source formats. OutputDir
// may be empty, in which case one is allocated next to the sources
// when the batch is large enough.
type Request struct {
	Files        []string
	TargetFormat string
	OutputDir    string
}

// Progress is a point-in-time snapshot reported before each file
// starts. Index is 0-based.
type Progress struct {
	Index     int
	Total     int
	File      string
	Succeeded int
	State     State
}

// FileError describes one file that could not be converted, with the
// user-facing failure detail.
type FileError struct {
	File    string
	Message string
}

// FileResult is the recorded outcome for one file of the batch.
type FileResult struct {
	File       string
	TargetPath string
	Duration   time.Duration
	Err        error
}

// Summary aggregates a finished batch.
type Summary struct {
	BatchID      string
	State        State
	TargetFormat string
	OutputDir    string
	Results      []FileResult
	Succeeded    int
	Failed       int
	Errors       []FileError
}
