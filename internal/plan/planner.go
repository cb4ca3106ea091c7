package plan

import (
	"fmt"
	"log/slog"
	"strings"

	"transmute/internal/faults"
	"transmute/internal/format"
	"transmute/internal/logging"
	"transmute/internal/rules"
)

// Plan is a fully resolved conversion: what runs, from what, to where.
type Plan struct {
	InputPath      string
	SourceFormat   string
	TargetFormat   string
	Category       string
	Rule           *rules.SpecialRule
	Template       rules.Template
	TempFileSuffix string
	TargetPath     string
}

// Planner resolves conversion requests against the format graph and
// rule source.
type Planner struct {
	graph *format.Graph
	src   *rules.Source
	log   *slog.Logger
}

// NewPlanner builds a planner. A nil logger disables logging.
func NewPlanner(graph *format.Graph, src *rules.Source, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Planner{graph: graph, src: src, log: logging.NewComponentLogger(logger, "planner")}
}

// Graph exposes the planner's format graph for target listings.
func (p *Planner) Graph() *format.Graph {
	return p.graph
}

// Plan resolves one conversion. outputDir may be empty, which places
// the output next to the source. The returned target path is unique
// at planning time.
func (p *Planner) Plan(inputPath, targetFormat, outputDir string) (*Plan, error) {
	source := p.graph.FormatOf(inputPath)
	if source == "" {
		return nil, faults.Wrap(faults.ErrValidation, "planner", "detect",
			fmt.Sprintf("cannot determine the format of %s", inputPath), nil)
	}
	target := strings.ToUpper(targetFormat)

	if err := p.checkSupported(source, target); err != nil {
		return nil, err
	}

	out := &Plan{
		InputPath:    inputPath,
		SourceFormat: source,
		TargetFormat: target,
	}

	if rule, ok := p.graph.RuleFor(source, target); ok {
		out.Category = format.CategorySpecial
		out.Rule = &rule
		out.Template = rule.Command
		out.TempFileSuffix = rule.TempFileSuffix
	} else {
		category, ok := p.graph.CategoryFor(source, target)
		if !ok {
			return nil, faults.Wrap(faults.ErrUnsupported, "planner", "resolve",
				fmt.Sprintf("no converter handles %s to %s", source, target), nil)
		}
		tmpl, ok := p.src.TemplateFor(category, p.graph.Canonical(target))
		if !ok {
			return nil, faults.Wrap(faults.ErrUnsupported, "planner", "resolve",
				fmt.Sprintf("the %s converter has no command for %s output", category, target), nil)
		}
		out.Category = category
		out.Template = tmpl
	}

	out.TargetPath = EnsureUnique(p.graph, TargetPath(p.graph, inputPath, target, outputDir))

	p.log.Debug("planned conversion",
		logging.String(logging.FieldSourceFormat, out.SourceFormat),
		logging.String(logging.FieldTargetFormat, out.TargetFormat),
		logging.String("category", out.Category),
		logging.String("target_path", out.TargetPath))
	return out, nil
}

func (p *Planner) checkSupported(source, target string) error {
	if reason, excluded := p.graph.ExclusionReason(source, target); excluded {
		return faults.Wrap(faults.ErrUnsupported, "planner", "resolve",
			fmt.Sprintf("%s to %s is not supported: %s", source, target, reason), nil)
	}
	canonicalTarget := p.graph.Canonical(target)
	for _, t := range p.graph.AvailableTargets(source) {
		if t == target || t == canonicalTarget {
			return nil
		}
	}
	// A mixed batch can ask a file to re-encode into its own format:
	// an AVI+MP4 batch targeting MP4 still converts the MP4 members.
	if canonicalTarget == p.graph.Canonical(source) && p.hasConverter(source, target) {
		return nil
	}
	return faults.Wrap(faults.ErrUnsupported, "planner", "resolve",
		fmt.Sprintf("%s cannot be converted to %s", source, target), nil)
}

func (p *Planner) hasConverter(source, target string) bool {
	if _, ok := p.graph.RuleFor(source, target); ok {
		return true
	}
	category, ok := p.graph.CategoryFor(source, target)
	if !ok {
		return false
	}
	_, ok = p.src.TemplateFor(category, p.graph.Canonical(target))
	return ok
}
