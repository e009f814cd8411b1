package display

import (
	"fmt"
	"strconv"
	"strings"
)

const ansiReset = "\x1b[0m"

// Theme maps semantic color names to ANSI SGR escape sequences. The
// rendering code never hardcodes a color; everything resolves through a
// Theme so the palette stays configurable.
type Theme map[string]string

// DefaultTheme returns the built-in palette: named colors for headers and
// accents plus the five heat-map intensity levels.
func DefaultTheme() Theme {
	return Theme{
		"bold":    "\x1b[1m",
		"dim":     "\x1b[2m",
		"red":     "\x1b[91m",
		"green":   "\x1b[92m",
		"yellow":  "\x1b[93m",
		"blue":    "\x1b[94m",
		"magenta": "\x1b[95m",
		"cyan":    "\x1b[96m",
		"white":   "\x1b[97m",
		"orange":  "\x1b[38;2;255;165;0m",
		"accent":  "\x1b[1m",
		"header":  "\x1b[38;2;118;215;161m",
		"muted":   "\x1b[2m",
		"level0":  "\x1b[38;2;235;237;240m", // #ebedf0
		"level1":  "\x1b[38;2;155;233;168m", // #9be9a8
		"level2":  "\x1b[38;2;64;196;99m",   // #40c463
		"level3":  "\x1b[38;2;48;161;78m",   // #30a14e
		"level4":  "\x1b[38;2;33;110;57m",   // #216e39
	}
}

// FromColors overlays user-configured colors on the default palette.
// Values may be #rrggbb hex (converted to a 24-bit foreground escape) or
// literal escape sequences; the shorthand keys "0".."4" alias the
// intensity levels "level0".."level4".
func FromColors(colors map[string]string) Theme {
	theme := DefaultTheme()
	for name, value := range colors {
		if len(name) == 1 && name[0] >= '0' && name[0] <= '4' {
			name = "level" + name
		}
		theme[strings.ToLower(name)] = resolveColor(value)
	}
	return theme
}

// resolveColor turns a configured color value into an escape sequence.
// Unrecognized values pass through verbatim so raw sequences keep working.
func resolveColor(value string) string {
	if code, ok := hexToEscape(value); ok {
		return code
	}
	// Config files carry escapes in source form; normalize the prefix.
	if strings.HasPrefix(value, `\033[`) {
		return "\x1b[" + value[len(`\033[`):]
	}
	if strings.HasPrefix(value, `\e[`) {
		return "\x1b[" + value[len(`\e[`):]
	}
	return value
}

// hexToEscape converts "#rrggbb" to a truecolor foreground escape.
func hexToEscape(value string) (string, bool) {
	if len(value) != 7 || value[0] != '#' {
		return "", false
	}
	r, err1 := strconv.ParseUint(value[1:3], 16, 8)
	g, err2 := strconv.ParseUint(value[3:5], 16, 8)
	b, err3 := strconv.ParseUint(value[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b), true
}

// Colorize wraps s in the escape for name plus a reset. It returns s
// unchanged when color is disabled, s is empty, or name does not resolve.
func (t Theme) Colorize(s, name string, enabled bool) string {
	if !enabled || s == "" {
		return s
	}
	code, ok := t[name]
	if !ok || code == "" {
		return s
	}
	return code + s + ansiReset
}
