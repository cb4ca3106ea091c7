// Package format models the conversion format graph: nine built-in
// format groups, alias canonicalization, extension based detection with
// compound suffix support, available-target computation, and special
// rule lookup with user-over-builtin precedence.
package format
