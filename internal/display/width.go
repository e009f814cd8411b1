package display

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ansiPattern matches ANSI SGR sequences such as \x1b[38;2;64;196;99m.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes SGR escape sequences, leaving only visible text.
func StripANSI(s string) string {
	if !strings.Contains(s, "\x1b") {
		return s
	}
	return ansiPattern.ReplaceAllString(s, "")
}

// Width returns the number of terminal columns s occupies. Escape
// sequences measure zero, East-Asian wide characters measure two and
// combining marks measure zero. Every padding and truncation decision in
// the package goes through this.
func Width(s string) int {
	return runewidth.StringWidth(StripANSI(s))
}

// Truncate shortens s to at most max columns, appending a single ellipsis
// when anything was cut. Text that already fits is returned unchanged.
// Callers truncate before colorizing, so s carries no escape sequences.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return runewidth.Truncate(s, max, "…")
}

// Pad right-pads s with spaces up to width columns. Lines already at or
// beyond the target are returned unchanged.
func Pad(s string, width int) string {
	gap := width - Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// maxLineWidth returns the widest display width across lines.
func maxLineWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		if lw := Width(line); lw > w {
			w = lw
		}
	}
	return w
}
