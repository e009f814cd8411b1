package display

import "testing"

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	required := []string{
		"bold", "muted", "accent", "header",
		"red", "green", "yellow", "cyan", "magenta",
		"level0", "level1", "level2", "level3", "level4",
	}
	for _, name := range required {
		if theme[name] == "" {
			t.Errorf("DefaultTheme() missing %q", name)
		}
	}

	if theme["level1"] != "\x1b[38;2;155;233;168m" {
		t.Errorf("level1 = %q; want truecolor #9be9a8 escape", theme["level1"])
	}
}

func TestFromColors(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		wantKey  string
		expected string
	}{
		{"hex color", "accent", "#ff8800", "accent", "\x1b[38;2;255;136;0m"},
		{"hex black", "muted", "#000000", "muted", "\x1b[38;2;0;0;0m"},
		{"level shorthand", "2", "#40c463", "level2", "\x1b[38;2;64;196;99m"},
		{"octal escape prefix", "header", `\033[35m`, "header", "\x1b[35m"},
		{"short escape prefix", "red", `\e[31m`, "red", "\x1b[31m"},
		{"raw escape kept", "bold", "\x1b[4m", "bold", "\x1b[4m"},
		{"uppercase key folded", "Accent", "#ffffff", "accent", "\x1b[38;2;255;255;255m"},
		{"custom name added", "sparkle", "#123456", "sparkle", "\x1b[38;2;18;52;86m"},
		{"invalid hex verbatim", "green", "#zzzzzz", "green", "#zzzzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := FromColors(map[string]string{tt.key: tt.value})
			if got := theme[tt.wantKey]; got != tt.expected {
				t.Errorf("FromColors()[%q] = %q; want %q", tt.wantKey, got, tt.expected)
			}
		})
	}
}

func TestFromColorsKeepsDefaults(t *testing.T) {
	theme := FromColors(map[string]string{"accent": "#ff0000"})
	if theme["level4"] != DefaultTheme()["level4"] {
		t.Errorf("FromColors dropped default level4")
	}
}

func TestColorize(t *testing.T) {
	theme := DefaultTheme()

	tests := []struct {
		name     string
		text     string
		color    string
		enabled  bool
		expected string
	}{
		{"wraps with reset", "hi", "bold", true, "\x1b[1mhi\x1b[0m"},
		{"disabled passthrough", "hi", "bold", false, "hi"},
		{"empty passthrough", "", "bold", true, ""},
		{"unknown name passthrough", "hi", "no-such-color", true, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := theme.Colorize(tt.text, tt.color, tt.enabled)
			if result != tt.expected {
				t.Errorf("Colorize(%q, %q, %v) = %q; want %q",
					tt.text, tt.color, tt.enabled, result, tt.expected)
			}
		})
	}
}

func TestColorizeEmptyCode(t *testing.T) {
	theme := Theme{"ghost": ""}
	if got := theme.Colorize("x", "ghost", true); got != "x" {
		t.Errorf("Colorize with empty escape = %q; want passthrough", got)
	}
}
