// Package rules loads the declarative conversion rule document: command
// templates per converter category, special cross-format rules, restricted
// output formats, per-pair exclusions, the format alias table, and
// per-group default target orderings.
//
// A default document ships embedded in the binary. When a user rules file
// exists it is merged on top: user special rules shadow built-in rules for
// the same (from, to) pair, user category templates replace built-in ones
// per target, and the remaining tables are unioned with user entries
// winning. The merged Source is immutable after Load.
package rules
