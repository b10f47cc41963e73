// Package format provides text helpers for lining up terminal output.
package format

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches SGR escape sequences such as colors and bold.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the number of terminal columns s occupies. Escape
// sequences take no space and wide runes such as emoji take two.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// Truncate shortens plain text to at most maxWidth columns, ending in "..."
// when anything was cut. It returns the result and its width.
func Truncate(s string, maxWidth int) (string, int) {
	if w := runewidth.StringWidth(s); w <= maxWidth {
		return s, w
	}
	out := runewidth.Truncate(s, maxWidth, "...")
	return out, runewidth.StringWidth(out)
}

// PadRight pads s with spaces from visibleWidth up to targetWidth.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}
