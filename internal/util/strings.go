// Package util provides small text helpers shared by the CLI renderers.
package util

import (
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Truncate shortens s to at most width visual columns, ending with an
// ellipsis when anything was cut. ANSI escape codes and wide characters are
// measured correctly.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return Ellipsis
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// TruncateLeft shortens s from the front, keeping its tail. Paths and lane
// targets carry their most specific part at the end.
func TruncateLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return Ellipsis
	}
	runes := []rune(s)
	for len(runes) > 0 && ansi.StringWidth(string(runes))+1 > width {
		runes = runes[1:]
	}
	return Ellipsis + string(runes)
}
