package command

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"transmute/internal/faults"
	"transmute/internal/logging"
	"transmute/internal/rules"
)

// Substitution carries the placeholder values for one conversion.
// Extra entries are additional placeholders a rule may reference.
type Substitution struct {
	InputPath  string
	OutputPath string
	Extra      map[string]string
}

// Compiled is a template rendered into executable form. Exactly one of
// Argv, ShellCommand, or Steps is populated: Argv for a plain command,
// ShellCommand when shell operators demand a shell, Steps for chains
// split on the chain separator.
type Compiled struct {
	Display      string
	Argv         []string
	Shell        bool
	ShellCommand string
	Steps        [][]string
	TempDir      *TempResource
	TempFile     *TempResource
}

// Chained reports whether the command runs as sequential steps.
func (c *Compiled) Chained() bool {
	return len(c.Steps) > 0
}

// Cleanup releases any temporary resources the compilation acquired.
func (c *Compiled) Cleanup() {
	c.TempDir.Cleanup()
	c.TempFile.Cleanup()
}

// Tools lists the executables the command will invoke.
func (c *Compiled) Tools() []string {
	return ExtractTools(c.Display)
}

// Compiler turns rule templates into Compiled commands.
type Compiler struct {
	temp TempOptions
	log  *slog.Logger
}

// NewCompiler builds a compiler creating temporary resources per opts.
func NewCompiler(opts TempOptions, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Compiler{temp: opts, log: logging.NewComponentLogger(logger, "compiler")}
}

var placeholderPattern = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

// Compile renders the template against the substitution. Templates
// referencing {temp_dir} or {temp_file} get fresh resources before
// substitution; tempFileSuffix overrides the configured temp suffix
// when a rule names one. The caller owns cleanup of the returned
// command's temporary resources on success; on error nothing is left
// behind.
func (c *Compiler) Compile(tmpl rules.Template, sub Substitution, tempFileSuffix string) (*Compiled, error) {
	if tmpl.Empty() {
		return nil, faults.Wrap(faults.ErrTemplate, "compiler", "compile", "empty template", nil)
	}
	raw := tmpl.Joined()

	out := &Compiled{}
	fail := func(op, msg string, err error) (*Compiled, error) {
		out.Cleanup()
		return nil, faults.Wrap(faults.ErrTemplate, "compiler", op, msg, err)
	}

	if strings.Contains(raw, "{temp_dir}") {
		dir, err := NewTempDir(c.temp)
		if err != nil {
			return fail("temp", "create temporary directory", err)
		}
		out.TempDir = dir
	}
	if strings.Contains(raw, "{temp_file}") {
		file, err := NewTempFile(c.temp, tempFileSuffix)
		if err != nil {
			return fail("temp", "create temporary file", err)
		}
		out.TempFile = file
	}

	formatted, err := c.substitute(raw, sub, out)
	if err != nil {
		out.Cleanup()
		return nil, err
	}

	if (out.TempDir != nil || out.TempFile != nil) && strings.Contains(formatted, ChainSeparator) {
		formatted = injectExistenceChecks(formatted, out.TempDir, out.TempFile)
	}
	out.Display = formatted

	switch {
	case strings.Contains(formatted, ChainSeparator):
		for _, step := range SplitChain(formatted) {
			if step == "" {
				continue
			}
			// A step with its own shell operators is kept raw behind its
			// tool name; the executor folds such chains into one shell run.
			if IsShellCommand(step) {
				out.Steps = append(out.Steps, []string{strings.Fields(step)[0], step})
				continue
			}
			argv, err := ParseArgv(step)
			if err != nil {
				return fail("parse", fmt.Sprintf("tokenize step %q", step), err)
			}
			if len(argv) > 0 {
				out.Steps = append(out.Steps, argv)
			}
		}
		if len(out.Steps) == 0 {
			return fail("parse", "chain produced no runnable steps", nil)
		}
	case IsShellCommand(formatted):
		out.Shell = true
		out.ShellCommand = formatted
	default:
		argv, err := ParseArgv(formatted)
		if err != nil {
			return fail("parse", fmt.Sprintf("tokenize command %q", formatted), err)
		}
		if len(argv) == 0 {
			return fail("parse", "command is empty after substitution", nil)
		}
		out.Argv = argv
	}

	c.log.Debug("compiled command",
		logging.String(logging.FieldCommand, out.Display),
		logging.Bool("shell", out.Shell),
		logging.Int("steps", len(out.Steps)))
	return out, nil
}

func (c *Compiler) substitute(raw string, sub Substitution, res *Compiled) (string, error) {
	values := map[string]string{}
	if sub.InputPath != "" {
		base := filepath.Base(sub.InputPath)
		values["input"] = sub.InputPath
		values["input_name"] = base
		values["input_stem"] = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if sub.OutputPath != "" {
		values["output"] = sub.OutputPath
		values["output_dir"] = filepath.Dir(sub.OutputPath)
	}
	if res.TempDir != nil {
		values["temp_dir"] = res.TempDir.Path
	}
	if res.TempFile != nil {
		values["temp_file"] = res.TempFile.Path
	}
	for k, v := range sub.Extra {
		values[k] = v
	}

	formatted := raw
	for k, v := range values {
		formatted = strings.ReplaceAll(formatted, "{"+k+"}", v)
	}
	if leftover := placeholderPattern.FindString(formatted); leftover != "" {
		return "", faults.Wrap(faults.ErrTemplate, "compiler", "substitute",
			fmt.Sprintf("unresolved placeholder %s", leftover), nil)
	}
	return formatted, nil
}

var consumerPattern = regexp.MustCompile(`^(mv|cp|cat)\s+['"]?([^'"\s]+)['"]?(\s|$)`)

// injectExistenceChecks inserts a test -f guard before chain steps
// that consume a temporary path with mv, cp, or cat. Some tools exit 0
// without producing output; the guard turns that into a step failure
// instead of letting mv report a confusing missing-file error.
func injectExistenceChecks(cmd string, tempDir, tempFile *TempResource) string {
	steps := SplitChain(cmd)
	if len(steps) < 2 {
		return cmd
	}
	guarded := []string{steps[0]}
	for _, step := range steps[1:] {
		if m := consumerPattern.FindStringSubmatch(step); m != nil {
			source := m[2]
			if (tempDir != nil && strings.Contains(source, tempDir.Path)) ||
				(tempFile != nil && strings.Contains(source, tempFile.Path)) {
				guarded = append(guarded, fmt.Sprintf("test -f '%s'", source))
			}
		}
		guarded = append(guarded, step)
	}
	return strings.Join(guarded, ChainSeparator)
}
