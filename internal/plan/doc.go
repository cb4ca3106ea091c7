// Package plan resolves a source file and requested target format into
// a concrete conversion plan: the governing rule or category template,
// the temp file suffix, and a unique output path.
package plan
