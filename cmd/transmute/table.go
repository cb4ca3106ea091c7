package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// writeTable renders a rounded table to out. rightCols are 1-based
// column numbers to right-align, for counts and durations.
func writeTable(out io.Writer, headers []string, rows [][]string, rightCols ...int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)

	hdr := make(table.Row, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	tw.AppendHeader(hdr)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	if len(rightCols) > 0 {
		cfgs := make([]table.ColumnConfig, 0, len(rightCols))
		for _, col := range rightCols {
			cfgs = append(cfgs, table.ColumnConfig{Number: col, Align: text.AlignRight})
		}
		tw.SetColumnConfigs(cfgs)
	}
	tw.Render()
}

// isTerminal reports whether writer is an interactive terminal, which
// gates progress bars.
func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
