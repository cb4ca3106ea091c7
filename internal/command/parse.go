package command

import (
	"regexp"
	"strings"

	"github.com/google/shlex"
)

// ChainSeparator joins and splits multi-step commands. Only the spaced
// form is treated as a chain boundary so arguments containing "&&"
// inside quoted values are left alone.
const ChainSeparator = " && "

// shellOperators force shell execution when present in a command.
var shellOperators = []string{"&&", "||", "|", ">", ">>", "<", "<<", ";"}

// ShellBuiltins are commands with no standalone binary; a chain step
// that starts with one can only run under a shell.
var ShellBuiltins = map[string]struct{}{
	"cd":     {},
	"export": {},
	"source": {},
	"alias":  {},
}

// IsShellCommand reports whether the command needs a shell: chain and
// or-chain operators anywhere, a spaced pipe, or spaced redirections.
// A ">" glued to an argument does not count, which keeps commands like
// "pandoc --metadata=<title>" in argv mode.
func IsShellCommand(cmd string) bool {
	if strings.Contains(cmd, "&&") || strings.Contains(cmd, "||") {
		return true
	}
	if strings.Contains(cmd, " | ") {
		return true
	}
	for _, op := range []string{">", ">>", "<", "<<"} {
		if strings.Contains(cmd, " "+op+" ") {
			return true
		}
		if strings.HasSuffix(strings.TrimRight(cmd, " "), " "+op) {
			return true
		}
		if strings.HasPrefix(strings.TrimLeft(cmd, " "), op+" ") {
			return true
		}
	}
	return false
}

// SplitChain splits a command on the chain separator, trimming each
// step.
func SplitChain(cmd string) []string {
	parts := strings.Split(cmd, ChainSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// ParseArgv tokenizes a single command into an argv slice with shell
// quoting rules.
func ParseArgv(cmd string) ([]string, error) {
	return shlex.Split(cmd)
}

var toolPattern = regexp.MustCompile(`(?:^|\||&&|\|\|)\s*([a-zA-Z0-9_-]+)`)

// ExtractTools lists the executable names a command invokes, one per
// chain or pipe segment. Used for dependency checks before execution.
func ExtractTools(cmd string) []string {
	matches := toolPattern.FindAllStringSubmatch(cmd, -1)
	tools := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[1] != "" {
			tools = append(tools, m[1])
		}
	}
	return tools
}

// QuoteArgv renders an argv slice back into a shell-safe string.
func QuoteArgv(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, arg := range argv {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n\"'\\$&|;<>()*?[]#~") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
}
