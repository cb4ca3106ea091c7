// Package textutil holds the small text helpers used by CLI output:
// human-friendly labels for format groups and list joining.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// GroupLabel renders a format group name for display: "SPREADSHEET"
// becomes "Spreadsheet".
func GroupLabel(group string) string {
	return titleCaser.String(strings.ToLower(group))
}

// JoinList joins items with commas and a final "and", for sentences
// like "PNG, JPEG and WEBP".
func JoinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// Truncate shortens a string to max runes, appending an ellipsis when
// it cuts.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
