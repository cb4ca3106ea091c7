// Package deps checks the external conversion tools on PATH and, when
// one is missing, suggests the install command for the system's
// package manager.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external tool a conversion relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
	InstallHint string
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// CheckBinaries evaluates the requirements and reports availability,
// attaching an install hint for every missing tool.
func CheckBinaries(requirements []Requirement) []Status {
	m := NewManager()
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := lookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			status.InstallHint = m.InstallHint(cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired filters statuses down to unavailable, non-optional
// tools.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}

// RequirementsForTools wraps raw tool names extracted from a compiled
// command into requirements. Shell utilities that are always present
// are skipped.
func RequirementsForTools(tools []string) []Requirement {
	var reqs []Requirement
	seen := make(map[string]struct{})
	for _, tool := range tools {
		if _, ok := ubiquitousTools[tool]; ok {
			continue
		}
		if _, ok := seen[tool]; ok {
			continue
		}
		seen[tool] = struct{}{}
		reqs = append(reqs, Requirement{Name: tool, Command: tool})
	}
	return reqs
}

// ubiquitousTools ship with every base system and are never reported
// as missing dependencies.
var ubiquitousTools = map[string]struct{}{
	"test":  {},
	"mv":    {},
	"cp":    {},
	"cat":   {},
	"rm":    {},
	"mkdir": {},
	"sh":    {},
	"cd":    {},
	"tar":   {},
}
