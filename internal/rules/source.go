package rules

import (
	"strings"
)

// Template is an ordered list of command steps. Single-step templates
// run as one command; multi-step templates form a chain that later
// compilation may join with " && " or execute step by step.
type Template struct {
	Steps []string
}

// Empty reports whether the template carries no steps.
func (t Template) Empty() bool {
	return len(t.Steps) == 0
}

// Joined returns the canonical single-string form of the template.
func (t Template) Joined() string {
	return strings.Join(t.Steps, " && ")
}

// CategoryTemplates holds the command templates for one converter
// category: a default template plus per-target overrides keyed by the
// upper-case target format name.
type CategoryTemplates struct {
	Default  Template
	ByTarget map[string]Template
}

// SpecialRule is a direct from→to conversion that bypasses the group
// template machinery. Origin records whether the rule came from the
// built-in document or a user rules file.
type SpecialRule struct {
	From           string
	To             string
	Command        Template
	TempFileSuffix string
	Origin         Origin
}

// Origin identifies which document contributed a rule.
type Origin int

const (
	OriginBuiltin Origin = iota
	OriginUser
)

func (o Origin) String() string {
	if o == OriginUser {
		return "user"
	}
	return "builtin"
}

// Exclusion suppresses one from→to pair with a human-readable reason.
type Exclusion struct {
	From   string
	To     string
	Reason string
}

// Source is the merged, immutable rule document.
type Source struct {
	version        string
	categories     map[string]CategoryTemplates
	special        []SpecialRule
	restricted     map[string]struct{}
	allowRestrict  map[string]struct{}
	exclusions     []Exclusion
	aliases        map[string]string
	defaultTargets map[string][]string
}

// Version returns the document version string, preferring the user
// document's version when one was merged.
func (s *Source) Version() string {
	return s.version
}

// TemplateFor resolves the command template for a category and target.
// A per-target override wins over the category default. The boolean is
// false when the category has no template at all for the target.
func (s *Source) TemplateFor(category, target string) (Template, bool) {
	ct, ok := s.categories[strings.ToLower(category)]
	if !ok {
		return Template{}, false
	}
	if t, ok := ct.ByTarget[strings.ToUpper(target)]; ok {
		return t, true
	}
	if ct.Default.Empty() {
		return Template{}, false
	}
	return ct.Default, true
}

// Templates returns every category's templates keyed by category
// name. The map is a copy; templates themselves are shared.
func (s *Source) Templates() map[string]CategoryTemplates {
	out := make(map[string]CategoryTemplates, len(s.categories))
	for name, ct := range s.categories {
		out[name] = ct
	}
	return out
}

// SpecialRules returns all special rules in precedence order: user
// rules first, then built-ins, each group in document order.
func (s *Source) SpecialRules() []SpecialRule {
	out := make([]SpecialRule, len(s.special))
	copy(out, s.special)
	return out
}

// Restricted reports whether a format may only appear as a conversion
// target when a rule names it explicitly.
func (s *Source) Restricted(format string) bool {
	_, ok := s.restricted[strings.ToUpper(format)]
	return ok
}

// RestrictedAllowed reports whether a user rule re-allowed a restricted
// format as a general target.
func (s *Source) RestrictedAllowed(format string) bool {
	_, ok := s.allowRestrict[strings.ToUpper(format)]
	return ok
}

// Exclusions returns every suppressed from→to pair.
func (s *Source) Exclusions() []Exclusion {
	out := make([]Exclusion, len(s.exclusions))
	copy(out, s.exclusions)
	return out
}

// Excluded returns the reason a pair is suppressed, if it is.
func (s *Source) Excluded(from, to string) (string, bool) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	for _, ex := range s.exclusions {
		if ex.From == from && ex.To == to {
			return ex.Reason, true
		}
	}
	return "", false
}

// Alias maps a format name to its canonical form. Unaliased names map
// to themselves.
func (s *Source) Alias(format string) string {
	format = strings.ToUpper(format)
	if canonical, ok := s.aliases[format]; ok {
		return canonical
	}
	return format
}

// Aliases returns a copy of the alias table.
func (s *Source) Aliases() map[string]string {
	out := make(map[string]string, len(s.aliases))
	for k, v := range s.aliases {
		out[k] = v
	}
	return out
}

// DefaultTargets returns the preferred target ordering for a format
// group, most preferred first.
func (s *Source) DefaultTargets(group string) []string {
	ts := s.defaultTargets[strings.ToLower(group)]
	out := make([]string, len(ts))
	copy(out, ts)
	return out
}
