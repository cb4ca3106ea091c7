package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"transmute/internal/command"
	"transmute/internal/deps"
	"transmute/internal/rules"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Check which external conversion tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.ensureEngine()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.RequirementsForTools(collectTools(eng.src)))

			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, s := range statuses {
				state := "installed"
				hint := ""
				if !s.Available {
					state = "missing"
					hint = s.InstallHint
					missing++
				}
				rows = append(rows, []string{s.Command, state, hint})
			}

			out := cmd.OutOrStdout()
			writeTable(out, []string{"Tool", "Status", "Install"}, rows)
			if missing == 0 {
				fmt.Fprintln(out, "All conversion tools are installed")
			} else {
				fmt.Fprintf(out, "%d of %d tools missing; the affected conversions will fail\n",
					missing, len(statuses))
			}
			return nil
		},
	}
}

// collectTools gathers every executable named by the rule source's
// templates and special rules, sorted and deduplicated.
func collectTools(src *rules.Source) []string {
	seen := make(map[string]struct{})
	add := func(tmpl rules.Template) {
		for _, tool := range command.ExtractTools(tmpl.Joined()) {
			seen[tool] = struct{}{}
		}
	}

	for _, ct := range src.Templates() {
		add(ct.Default)
		for _, tmpl := range ct.ByTarget {
			add(tmpl)
		}
	}
	for _, rule := range src.SpecialRules() {
		add(rule.Command)
	}

	tools := make([]string, 0, len(seen))
	for tool := range seen {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	return tools
}
