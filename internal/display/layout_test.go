package display

import (
	"strings"
	"testing"
	"time"

	"github.com/gitfetch/gitfetch/internal/stats"
)

func TestDetectMode(t *testing.T) {
	tests := []struct {
		width    int
		expected Mode
	}{
		{0, ModeMinimal},
		{40, ModeMinimal},
		{79, ModeMinimal},
		{80, ModeCompact},
		{100, ModeCompact},
		{139, ModeCompact},
		{140, ModeFull},
		{500, ModeFull},
	}

	for _, tt := range tests {
		if got := DetectMode(tt.width); got != tt.expected {
			t.Errorf("DetectMode(%d) = %v; want %v", tt.width, got, tt.expected)
		}
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeMinimal, "minimal"},
		{ModeCompact, "compact"},
		{ModeFull, "full"},
		{Mode(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.expected {
			t.Errorf("Mode(%d).String() = %q; want %q", tt.mode, got, tt.expected)
		}
	}
}

func TestJoinBlocks(t *testing.T) {
	first := []string{"one", "two", "three"}
	second := []string{"1", "2", "3", "4", "5"}

	lines := JoinBlocks(2, first, second)
	expected := []string{
		"one    1",
		"two    2",
		"three  3",
		"       4",
		"       5",
	}
	if len(lines) != len(expected) {
		t.Fatalf("JoinBlocks = %d lines; want %d:\n%q", len(lines), len(expected), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("JoinBlocks[%d] = %q; want %q", i, lines[i], expected[i])
		}
	}
}

func TestJoinBlocksPadsByDisplayWidth(t *testing.T) {
	// The colored first line is visually 2 cells; padding must ignore the
	// escape bytes.
	first := []string{"\x1b[1mab\x1b[0m", "wide"}
	second := []string{"x", "y"}

	lines := JoinBlocks(2, first, second)
	if Width(lines[0]) != Width(lines[1]) {
		t.Errorf("rows misaligned: %q (w=%d) vs %q (w=%d)",
			lines[0], Width(lines[0]), lines[1], Width(lines[1]))
	}
}

func TestJoinBlocksSingle(t *testing.T) {
	block := []string{"solo"}
	lines := JoinBlocks(2, nil, block, []string{})
	if len(lines) != 1 || lines[0] != "solo" {
		t.Errorf("JoinBlocks(single) = %q; want passthrough", lines)
	}
}

func TestJoinBlocksAllEmpty(t *testing.T) {
	if lines := JoinBlocks(2); lines != nil {
		t.Errorf("JoinBlocks() = %v; want nil", lines)
	}
}

func TestWrapGrid(t *testing.T) {
	a := []string{"aaaa"}
	b := []string{"bbbb"}
	c := []string{"cc"}

	t.Run("fits one row", func(t *testing.T) {
		lines := WrapGrid(10, 2, a, b)
		if len(lines) != 1 || lines[0] != "aaaa  bbbb" {
			t.Errorf("WrapGrid = %q; want single joined row", lines)
		}
	})

	t.Run("wraps with blank separator", func(t *testing.T) {
		lines := WrapGrid(10, 2, a, b, c)
		expected := []string{"aaaa  bbbb", "", "cc"}
		if len(lines) != len(expected) {
			t.Fatalf("WrapGrid = %q; want %q", lines, expected)
		}
		for i := range expected {
			if lines[i] != expected[i] {
				t.Errorf("WrapGrid[%d] = %q; want %q", i, lines[i], expected[i])
			}
		}
	})

	t.Run("oversize block keeps its own row", func(t *testing.T) {
		wide := []string{strings.Repeat("w", 30)}
		lines := WrapGrid(10, 2, wide, a)
		if lines[0] != wide[0] {
			t.Errorf("WrapGrid[0] = %q; want oversize block rendered", lines[0])
		}
		if lines[1] != "" || lines[2] != "aaaa" {
			t.Errorf("WrapGrid tail = %q; want wrap after oversize block", lines[1:])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if lines := WrapGrid(10, 2); lines != nil {
			t.Errorf("WrapGrid() = %v; want nil", lines)
		}
	})
}

func sampleBundle() stats.Bundle {
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	return stats.Bundle{
		TotalRepos:         12,
		TotalStars:         340,
		TotalForks:         25,
		TotalContributions: 900,
		Languages: []stats.Language{
			{Name: "Go", Percentage: 61.5},
			{Name: "Shell", Percentage: 38.5},
		},
		Graph: testWeeks(start, [][]int{fullWeek(2), fullWeek(0), fullWeek(6)}),
		PullRequests: []stats.DashboardGroup{
			{Name: "Awaiting Review", TotalCount: 1, Items: []stats.DashboardItem{
				{Title: "Add pagination", Repo: "acme/api"},
			}},
		},
		Issues: []stats.DashboardGroup{
			{Name: "Assigned", TotalCount: 0},
		},
	}
}

func sampleProfile() stats.Profile {
	return stats.Profile{Login: "ada", Name: "Ada", Bio: "systems"}
}

func renderOpts(width int) Options {
	opts := DefaultOptions()
	opts.Width = width
	opts.ColorEnabled = false
	return opts
}

func findLine(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestRenderTrailingBlank(t *testing.T) {
	for _, width := range []int{60, 100, 200} {
		lines := Render(sampleProfile(), sampleBundle(), renderOpts(width))
		if len(lines) == 0 {
			t.Fatalf("width %d: no output", width)
		}
		if lines[len(lines)-1] != "" {
			t.Errorf("width %d: last line = %q; want blank", width, lines[len(lines)-1])
		}
		if len(lines) > 1 && lines[len(lines)-2] == "" {
			t.Errorf("width %d: output ends with more than one blank line", width)
		}
	}
}

func TestRenderMinimal(t *testing.T) {
	lines := Render(sampleProfile(), sampleBundle(), renderOpts(60))

	if !findLine(lines, "■") {
		t.Errorf("minimal output missing grid glyphs")
	}
	if !findLine(lines, "Less ■ ■ ■ ■ ■ More") {
		t.Errorf("minimal output missing legend")
	}
	if findLine(lines, "contributions this year") {
		t.Errorf("minimal output should not carry identity")
	}
	if findLine(lines, "OVERVIEW") {
		t.Errorf("minimal output should not carry sections")
	}
}

func TestRenderCompact(t *testing.T) {
	lines := Render(sampleProfile(), sampleBundle(), renderOpts(100))

	if !findLine(lines, "■") {
		t.Errorf("compact output missing grid")
	}
	if !findLine(lines, "Ada - 900 contributions this year") {
		t.Errorf("compact output missing identity headline")
	}
	if !findLine(lines, "Repos: 12") {
		t.Errorf("compact output missing repo counter")
	}
	if findLine(lines, "TOP LANGUAGES") {
		t.Errorf("compact output should not carry the language section")
	}
}

func TestRenderFull(t *testing.T) {
	lines := Render(sampleProfile(), sampleBundle(), renderOpts(200))

	for _, want := range []string{
		"■",
		"Ada - 900 contributions this year",
		"ACHIEVEMENTS",
		"OVERVIEW",
		"PULL REQUESTS",
		"ISSUES",
		"TOP LANGUAGES",
		"• None",
	} {
		if !findLine(lines, want) {
			t.Errorf("full output missing %q", want)
		}
	}
}

func TestRenderToggles(t *testing.T) {
	t.Run("graph only forces minimal", func(t *testing.T) {
		opts := renderOpts(200)
		opts.GraphOnly = true
		lines := Render(sampleProfile(), sampleBundle(), opts)
		if findLine(lines, "contributions this year") || findLine(lines, "OVERVIEW") {
			t.Errorf("graph-only output carries sections")
		}
		if !findLine(lines, "■") {
			t.Errorf("graph-only output missing grid")
		}
	})

	t.Run("hide grid", func(t *testing.T) {
		opts := renderOpts(100)
		opts.ShowGrid = false
		lines := Render(sampleProfile(), sampleBundle(), opts)
		if findLine(lines, "Less ■") {
			t.Errorf("grid rendered despite toggle")
		}
		if !findLine(lines, "contributions this year") {
			t.Errorf("identity missing when grid hidden")
		}
	})

	t.Run("hide account", func(t *testing.T) {
		opts := renderOpts(100)
		opts.ShowAccount = false
		lines := Render(sampleProfile(), sampleBundle(), opts)
		if findLine(lines, "contributions this year") {
			t.Errorf("identity rendered despite toggle")
		}
	})

	t.Run("hide sections in full", func(t *testing.T) {
		opts := renderOpts(200)
		opts.ShowAchievements = false
		opts.ShowLanguages = false
		opts.ShowPullRequests = false
		opts.ShowIssues = false
		lines := Render(sampleProfile(), sampleBundle(), opts)
		for _, absent := range []string{"ACHIEVEMENTS", "TOP LANGUAGES", "PULL REQUESTS", "ISSUES"} {
			if findLine(lines, absent) {
				t.Errorf("full output carries %q despite toggle", absent)
			}
		}
		if !findLine(lines, "OVERVIEW") {
			t.Errorf("overview should stay on")
		}
	})

	t.Run("show date footer", func(t *testing.T) {
		opts := renderOpts(100)
		opts.ShowDate = true
		opts.Now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		lines := Render(sampleProfile(), sampleBundle(), opts)
		if !findLine(lines, "Generated on 2024-06-01") {
			t.Errorf("output missing date footer:\n%q", lines)
		}
	})

	t.Run("everything off still terminates", func(t *testing.T) {
		opts := renderOpts(60)
		opts.ShowGrid = false
		lines := Render(sampleProfile(), sampleBundle(), opts)
		if len(lines) != 1 || lines[0] != "" {
			t.Errorf("empty render = %q; want single blank line", lines)
		}
	})
}

func TestRenderEmptyCalendar(t *testing.T) {
	bundle := sampleBundle()
	bundle.Graph = nil
	lines := Render(sampleProfile(), bundle, renderOpts(60))

	if !findLine(lines, "No contribution data yet") {
		t.Errorf("empty calendar output missing placeholder:\n%q", lines)
	}
}

// End-to-end: one week of counts 5,0,3 on a wide terminal.
func TestRenderSingleWeekWide(t *testing.T) {
	start := time.Date(2024, 4, 7, 0, 0, 0, 0, time.UTC)
	bundle := stats.Bundle{
		Graph: testWeeks(start, [][]int{{5, 0, 3}}),
	}
	profile := stats.Profile{Login: "solo"}

	lines := Render(profile, bundle, renderOpts(200))

	if !findLine(lines, "Apr") {
		t.Errorf("output missing month label:\n%q", lines)
	}
	if !findLine(lines, "Less ■ ■ ■ ■ ■ More") {
		t.Errorf("output missing legend")
	}
	if !findLine(lines, "ACHIEVEMENTS") {
		t.Errorf("output missing achievements section")
	}
	if findLine(lines, "+ Contributions") {
		t.Errorf("total of 8 must not earn a contribution badge")
	}

	// Exactly one week column: a day row is margin plus a single cell.
	if !findLine(lines, "    ■") {
		t.Errorf("output missing single-cell day rows")
	}
}

func BenchmarkRenderFull(b *testing.B) {
	profile := sampleProfile()
	bundle := sampleBundle()
	opts := renderOpts(200)
	opts.ColorEnabled = true

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Render(profile, bundle, opts)
	}
}
