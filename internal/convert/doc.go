// Package convert runs a single file conversion end to end: preflight
// checks, planning, command compilation, dependency verification,
// subprocess execution, and cleanup of partial output.
package convert
