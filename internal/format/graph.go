package format

import (
	"sort"
	"strings"

	"transmute/internal/rules"
)

// Graph answers every format question the planner asks: group
// membership, canonical names, reachable targets, and special rule
// resolution. It is immutable after construction.
type Graph struct {
	src              *rules.Source
	canonicalTargets bool
	groups           map[string]Group
	formatToGroup    map[string]string
	compoundSuffixes []string
}

// NewGraph builds the graph over the merged rule source. When
// canonicalTargets is true, available-target listings collapse aliases
// to canonical names; raw spellings are listed otherwise.
func NewGraph(src *rules.Source, canonicalTargets bool) *Graph {
	g := &Graph{
		src:              src,
		canonicalTargets: canonicalTargets,
		groups:           make(map[string]Group, len(builtinGroups)),
		formatToGroup:    make(map[string]string),
	}
	for _, grp := range builtinGroups {
		g.groups[grp.Name] = grp
		for _, member := range grp.Members {
			g.formatToGroup[member] = grp.Name
			if strings.Contains(member, ".") {
				g.compoundSuffixes = append(g.compoundSuffixes, strings.ToLower(member))
			}
		}
	}
	// Longest suffix first so TAR.GZ beats GZ-style single extensions.
	sort.Slice(g.compoundSuffixes, func(i, j int) bool {
		return len(g.compoundSuffixes[i]) > len(g.compoundSuffixes[j])
	})
	return g
}

// Canonical resolves alias spellings to the canonical format name.
func (g *Graph) Canonical(format string) string {
	return g.src.Alias(format)
}

// Known reports whether the format belongs to any group.
func (g *Graph) Known(format string) bool {
	_, ok := g.formatToGroup[strings.ToUpper(format)]
	return ok
}

// GroupOf returns the group a format belongs to.
func (g *Graph) GroupOf(format string) (Group, bool) {
	name, ok := g.formatToGroup[strings.ToUpper(format)]
	if !ok {
		return Group{}, false
	}
	return g.groups[name], true
}

// Groups returns the catalog sorted by group name.
func (g *Graph) Groups() []Group {
	out := make([]Group, 0, len(g.groups))
	for _, grp := range g.groups {
		out = append(out, grp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AvailableTargets computes every format the source can convert to:
// the source's group members, plus special rule targets, minus
// restricted outputs not re-allowed for this source, minus excluded
// pairs, with the source itself removed.
func (g *Graph) AvailableTargets(source string) []string {
	source = strings.ToUpper(source)
	available := make(map[string]struct{})

	if grp, ok := g.GroupOf(source); ok && grp.InternalConversions {
		for _, member := range grp.Members {
			available[member] = struct{}{}
		}
		delete(available, source)
	}

	allowed := make(map[string]struct{})
	for _, rule := range g.src.SpecialRules() {
		if rule.From != source {
			continue
		}
		available[rule.To] = struct{}{}
		if rule.Origin == rules.OriginUser {
			allowed[rule.To] = struct{}{}
		}
	}

	for f := range available {
		if !g.src.Restricted(f) {
			continue
		}
		if _, ok := allowed[f]; ok {
			continue
		}
		if g.src.RestrictedAllowed(f) {
			continue
		}
		delete(available, f)
	}

	for _, ex := range g.src.Exclusions() {
		if ex.From != source {
			continue
		}
		if _, ok := allowed[ex.To]; ok {
			continue
		}
		delete(available, ex.To)
	}

	if !g.canonicalTargets {
		return sortedKeys(available)
	}

	canonical := make(map[string]struct{}, len(available))
	for f := range available {
		canonical[g.Canonical(f)] = struct{}{}
	}
	delete(canonical, g.Canonical(source))
	return sortedKeys(canonical)
}

// CommonTargets computes the targets reachable from every source in a
// batch: the intersection of each source's available targets. For
// mixed batches a source format that some other source can produce is
// added back, which lets an AVI+MP4 batch still offer MP4.
func (g *Graph) CommonTargets(sources []string) []string {
	if len(sources) == 0 {
		return nil
	}

	var common map[string]struct{}
	union := make(map[string]struct{})
	sourceSet := make(map[string]struct{}, len(sources))
	for i, source := range sources {
		sourceSet[g.Canonical(source)] = struct{}{}
		targets := g.AvailableTargets(source)
		set := make(map[string]struct{}, len(targets))
		for _, t := range targets {
			set[t] = struct{}{}
			union[t] = struct{}{}
		}
		if i == 0 {
			common = set
			continue
		}
		for t := range common {
			if _, ok := set[t]; !ok {
				delete(common, t)
			}
		}
	}

	if len(sourceSet) > 1 {
		for s := range sourceSet {
			if _, ok := union[s]; ok {
				common[s] = struct{}{}
			}
		}
	}
	return sortedKeys(common)
}

// RuleFor finds the special rule governing a from→to pair. Exact name
// matches win over canonical matches, and within each pass user rules
// win over built-ins. A rule found under canonical names is re-tagged
// with the requested spellings.
func (g *Graph) RuleFor(from, to string) (rules.SpecialRule, bool) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	for _, rule := range g.src.SpecialRules() {
		if rule.From == from && rule.To == to {
			return rule, true
		}
	}

	canonicalFrom := g.Canonical(from)
	canonicalTo := g.Canonical(to)
	if canonicalFrom == from && canonicalTo == to {
		return rules.SpecialRule{}, false
	}
	for _, rule := range g.src.SpecialRules() {
		if rule.From == canonicalFrom && rule.To == canonicalTo {
			rule.From = from
			rule.To = to
			return rule, true
		}
	}
	return rules.SpecialRule{}, false
}

// CategoryFor selects the converter category for a pair: a special
// rule beats the target's group, which beats the source's group.
func (g *Graph) CategoryFor(from, to string) (string, bool) {
	if _, ok := g.RuleFor(from, to); ok {
		return CategorySpecial, true
	}
	if grp, ok := g.GroupOf(to); ok {
		return grp.Category, true
	}
	if grp, ok := g.GroupOf(from); ok {
		return grp.Category, true
	}
	return "", false
}

// DefaultTargetFor picks the recommended target for a source: the
// first of the group's configured default targets that is not the
// source itself, falling back to the first available target.
func (g *Graph) DefaultTargetFor(source string) string {
	source = strings.ToUpper(source)
	if grp, ok := g.GroupOf(source); ok {
		for _, t := range g.src.DefaultTargets(grp.Name) {
			if t != source {
				return t
			}
		}
	}
	if targets := g.AvailableTargets(source); len(targets) > 0 {
		return targets[0]
	}
	return ""
}

// ExclusionReason returns why a pair is suppressed, if it is.
func (g *Graph) ExclusionReason(from, to string) (string, bool) {
	return g.src.Excluded(from, to)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
