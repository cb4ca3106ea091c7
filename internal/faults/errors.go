// Package faults defines the conversion error taxonomy shared by the
// planner, compiler, executor, and runner, plus helpers for tagging
// errors with operation context.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupported marks a conversion the format graph cannot satisfy.
	ErrUnsupported = errors.New("unsupported conversion")
	// ErrTemplate marks a command template that failed to compile.
	ErrTemplate = errors.New("template error")
	// ErrMissingTool marks an external binary that is not installed.
	ErrMissingTool = errors.New("missing tool")
	// ErrProcess marks a conversion process that exited unsuccessfully.
	ErrProcess = errors.New("process failure")
	// ErrChainStep marks a failure partway through a chained command.
	ErrChainStep = errors.New("chain step failure")
	// ErrCancelled marks a conversion stopped by user request.
	ErrCancelled = errors.New("conversion cancelled")
	// ErrValidation marks bad input before any work starts.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable settings or rule documents.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap tags an error with one of the sentinel markers above and a
// component/operation prefix so callers can classify with errors.Is
// while logs stay readable.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrProcess
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsCancelled reports whether the error chain contains a cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// UserFacing reduces an error chain to the message shown in dialogs
// and batch summaries: the innermost detail without marker prefixes.
func UserFacing(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{
		ErrUnsupported, ErrTemplate, ErrMissingTool, ErrProcess,
		ErrChainStep, ErrCancelled, ErrValidation, ErrConfiguration,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
