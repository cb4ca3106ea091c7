package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed rules.toml
var builtinRules []byte

// document mirrors the TOML shape of a rules file. Template values are
// decoded as any because the format accepts either a single command
// string or an array of chained steps.
type document struct {
	Version    string                 `toml:"version"`
	Categories map[string]categoryDoc `toml:"categories"`
	Special    []specialDoc           `toml:"special"`
	Restricted restrictedDoc          `toml:"restricted"`
	Exclusions []exclusionDoc         `toml:"exclusions"`
	Aliases    map[string]string      `toml:"aliases"`
	Defaults   map[string][]string    `toml:"default_targets"`
}

type categoryDoc struct {
	Default  any            `toml:"default"`
	ByTarget map[string]any `toml:"by_target"`
}

type specialDoc struct {
	From           string `toml:"from"`
	To             string `toml:"to"`
	Command        any    `toml:"command"`
	TempFileSuffix string `toml:"temp_file_suffix"`
}

type restrictedDoc struct {
	Outputs []string `toml:"outputs"`
	Allow   []string `toml:"allow"`
}

type exclusionDoc struct {
	From   string `toml:"from"`
	To     string `toml:"to"`
	Reason string `toml:"reason"`
}

// Load builds the merged rule source. userPath may be empty or point at
// a file that does not exist; both mean built-ins only.
func Load(userPath string) (*Source, error) {
	builtin, err := parseDocument(builtinRules)
	if err != nil {
		return nil, fmt.Errorf("parse built-in rules: %w", err)
	}
	src, err := fromDocument(builtin, OriginBuiltin)
	if err != nil {
		return nil, fmt.Errorf("built-in rules: %w", err)
	}
	if userPath == "" {
		return src, nil
	}
	data, err := os.ReadFile(userPath)
	if err != nil {
		if os.IsNotExist(err) {
			return src, nil
		}
		return nil, fmt.Errorf("read rules file %s: %w", userPath, err)
	}
	userDoc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", userPath, err)
	}
	user, err := fromDocument(userDoc, OriginUser)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", userPath, err)
	}
	return merge(src, user), nil
}

func parseDocument(data []byte) (*document, error) {
	var doc document
	dec := toml.NewDecoder(strings.NewReader(string(data)))
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func fromDocument(doc *document, origin Origin) (*Source, error) {
	src := &Source{
		version:        doc.Version,
		categories:     make(map[string]CategoryTemplates),
		restricted:     make(map[string]struct{}),
		allowRestrict:  make(map[string]struct{}),
		aliases:        make(map[string]string),
		defaultTargets: make(map[string][]string),
	}
	for name, cat := range doc.Categories {
		ct := CategoryTemplates{ByTarget: make(map[string]Template)}
		if cat.Default != nil {
			t, err := coerceTemplate(cat.Default)
			if err != nil {
				return nil, fmt.Errorf("category %s default: %w", name, err)
			}
			ct.Default = t
		}
		for target, raw := range cat.ByTarget {
			t, err := coerceTemplate(raw)
			if err != nil {
				return nil, fmt.Errorf("category %s target %s: %w", name, target, err)
			}
			ct.ByTarget[strings.ToUpper(target)] = t
		}
		src.categories[strings.ToLower(name)] = ct
	}
	for i, sp := range doc.Special {
		if sp.From == "" || sp.To == "" {
			return nil, fmt.Errorf("special rule %d: from and to are required", i)
		}
		cmd, err := coerceTemplate(sp.Command)
		if err != nil {
			return nil, fmt.Errorf("special rule %s to %s: %w", sp.From, sp.To, err)
		}
		if cmd.Empty() {
			return nil, fmt.Errorf("special rule %s to %s: command is required", sp.From, sp.To)
		}
		src.special = append(src.special, SpecialRule{
			From:           strings.ToUpper(sp.From),
			To:             strings.ToUpper(sp.To),
			Command:        cmd,
			TempFileSuffix: sp.TempFileSuffix,
			Origin:         origin,
		})
	}
	for _, f := range doc.Restricted.Outputs {
		src.restricted[strings.ToUpper(f)] = struct{}{}
	}
	for _, f := range doc.Restricted.Allow {
		src.allowRestrict[strings.ToUpper(f)] = struct{}{}
	}
	for i, ex := range doc.Exclusions {
		if ex.From == "" || ex.To == "" {
			return nil, fmt.Errorf("exclusion %d: from and to are required", i)
		}
		src.exclusions = append(src.exclusions, Exclusion{
			From:   strings.ToUpper(ex.From),
			To:     strings.ToUpper(ex.To),
			Reason: ex.Reason,
		})
	}
	for alias, canonical := range doc.Aliases {
		src.aliases[strings.ToUpper(alias)] = strings.ToUpper(canonical)
	}
	flattenAliases(src.aliases)
	for group, targets := range doc.Defaults {
		ts := make([]string, 0, len(targets))
		for _, t := range targets {
			ts = append(ts, strings.ToUpper(t))
		}
		src.defaultTargets[strings.ToLower(group)] = ts
	}
	return src, nil
}

func coerceTemplate(raw any) (Template, error) {
	switch v := raw.(type) {
	case nil:
		return Template{}, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return Template{}, fmt.Errorf("template is empty")
		}
		return Template{Steps: []string{v}}, nil
	case []any:
		steps := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return Template{}, fmt.Errorf("template steps must be strings, got %T", item)
			}
			if strings.TrimSpace(s) == "" {
				return Template{}, fmt.Errorf("template contains an empty step")
			}
			steps = append(steps, s)
		}
		if len(steps) == 0 {
			return Template{}, fmt.Errorf("template is empty")
		}
		return Template{Steps: steps}, nil
	default:
		return Template{}, fmt.Errorf("template must be a string or array of strings, got %T", raw)
	}
}

// merge layers user on top of builtin. User special rules come first so
// precedence scans find them before built-ins; a user rule for the same
// pair shadows the built-in entirely.
func merge(builtin, user *Source) *Source {
	out := &Source{
		version:        builtin.version,
		categories:     make(map[string]CategoryTemplates),
		restricted:     make(map[string]struct{}),
		allowRestrict:  make(map[string]struct{}),
		aliases:        make(map[string]string),
		defaultTargets: make(map[string][]string),
	}
	if user.version != "" {
		out.version = user.version
	}
	for name, ct := range builtin.categories {
		out.categories[name] = cloneCategory(ct)
	}
	for name, uct := range user.categories {
		ct, ok := out.categories[name]
		if !ok {
			out.categories[name] = cloneCategory(uct)
			continue
		}
		if !uct.Default.Empty() {
			ct.Default = uct.Default
		}
		for target, t := range uct.ByTarget {
			ct.ByTarget[target] = t
		}
		out.categories[name] = ct
	}
	shadowed := make(map[string]struct{})
	for _, sp := range user.special {
		out.special = append(out.special, sp)
		shadowed[sp.From+"\x00"+sp.To] = struct{}{}
	}
	for _, sp := range builtin.special {
		if _, ok := shadowed[sp.From+"\x00"+sp.To]; ok {
			continue
		}
		out.special = append(out.special, sp)
	}
	for f := range builtin.restricted {
		out.restricted[f] = struct{}{}
	}
	for f := range user.restricted {
		out.restricted[f] = struct{}{}
	}
	for f := range user.allowRestrict {
		out.allowRestrict[f] = struct{}{}
	}
	out.exclusions = append(out.exclusions, builtin.exclusions...)
	for _, ex := range user.exclusions {
		if _, ok := out.Excluded(ex.From, ex.To); !ok {
			out.exclusions = append(out.exclusions, ex)
		}
	}
	for alias, canonical := range builtin.aliases {
		out.aliases[alias] = canonical
	}
	for alias, canonical := range user.aliases {
		out.aliases[alias] = canonical
	}
	flattenAliases(out.aliases)
	for group, ts := range builtin.defaultTargets {
		out.defaultTargets[group] = ts
	}
	for group, ts := range user.defaultTargets {
		out.defaultTargets[group] = ts
	}
	return out
}

// flattenAliases collapses alias chains so every entry maps straight
// to a terminal canonical name. Resolution stays idempotent even when
// a user document re-aliases a name that was canonical before the
// merge. A cycle stops one step before revisiting a name.
func flattenAliases(aliases map[string]string) {
	for alias := range aliases {
		seen := map[string]struct{}{alias: {}}
		canonical := aliases[alias]
		for {
			next, ok := aliases[canonical]
			if !ok {
				break
			}
			if _, cycled := seen[next]; cycled {
				break
			}
			seen[canonical] = struct{}{}
			canonical = next
		}
		aliases[alias] = canonical
	}
}

func cloneCategory(ct CategoryTemplates) CategoryTemplates {
	clone := CategoryTemplates{Default: ct.Default, ByTarget: make(map[string]Template, len(ct.ByTarget))}
	for k, v := range ct.ByTarget {
		clone.ByTarget[k] = v
	}
	return clone
}
