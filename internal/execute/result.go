package execute

import "strings"

// Result is the outcome of one subprocess run.
type Result struct {
	Success   bool
	Cancelled bool
	ExitCode  int
	Stdout    string
	Stderr    string
	Command   string
}

// ErrorOutput returns the text shown to the user for a failed run:
// stderr when present, stdout otherwise, and a generic message when
// the process produced no output at all.
func (r Result) ErrorOutput() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.Stdout); s != "" {
		return s
	}
	return "the command failed without producing output"
}

// ChainResult is the outcome of a chained run. StepIndex is the
// 1-based index of the failing step, 0 when every step succeeded or
// the chain was folded into a single shell command.
type ChainResult struct {
	Result
	StepIndex int
	StepTotal int
	Message   string
}
