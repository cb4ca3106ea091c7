// Package logging builds the slog loggers used across transmute and
// standardizes the structured field names components attach to records.
//
// Console output uses a compact human-oriented handler; JSON output is
// intended for piping into log collectors. Helpers such as NewNop and
// NewComponentLogger keep constructor signatures small in packages that
// accept an optional logger.
package logging
