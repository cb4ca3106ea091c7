package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"transmute/internal/faults"
	"transmute/internal/textutil"
)

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats [FORMAT]",
		Short: "List format groups or the targets reachable from a format",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return printFormatGroups(cmd, eng)
			}
			return printAvailableTargets(cmd, eng, args[0])
		},
	}
}

func printFormatGroups(cmd *cobra.Command, eng *engine) error {
	rows := make([][]string, 0)
	for _, group := range eng.graph.Groups() {
		rows = append(rows, []string{
			textutil.GroupLabel(group.Name),
			group.Category,
			strings.Join(group.Members, ", "),
		})
	}
	writeTable(cmd.OutOrStdout(), []string{"Group", "Category", "Formats"}, rows)
	return nil
}

func printAvailableTargets(cmd *cobra.Command, eng *engine, arg string) error {
	source := strings.ToUpper(strings.TrimSpace(arg))
	if !eng.graph.Known(source) {
		return faults.Wrap(faults.ErrValidation, "cli", "formats",
			fmt.Sprintf("unknown format %s", source), nil)
	}

	out := cmd.OutOrStdout()
	if group, ok := eng.graph.GroupOf(source); ok {
		fmt.Fprintf(out, "Source format: %s (%s)\n", source, textutil.GroupLabel(group.Name))
	} else {
		fmt.Fprintf(out, "Source format: %s\n", source)
	}

	targets := eng.graph.AvailableTargets(source)
	if len(targets) == 0 {
		fmt.Fprintln(out, "No conversions available")
		return nil
	}
	fmt.Fprintf(out, "Available targets: %s\n", textutil.JoinList(targets))
	if def := eng.graph.DefaultTargetFor(source); def != "" {
		fmt.Fprintf(out, "Default target: %s\n", def)
	}
	return nil
}
