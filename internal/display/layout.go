package display

import (
	"strings"
	"time"

	"github.com/gitfetch/gitfetch/internal/stats"
)

const (
	minimalWidth = 80
	fullWidth    = 140
	columnGap    = 2
)

// Mode is the layout selected from the terminal width.
type Mode int

const (
	ModeMinimal Mode = iota
	ModeCompact
	ModeFull
)

func (m Mode) String() string {
	switch m {
	case ModeMinimal:
		return "minimal"
	case ModeCompact:
		return "compact"
	case ModeFull:
		return "full"
	default:
		return "unknown"
	}
}

// DetectMode maps a terminal width to a layout mode.
func DetectMode(width int) Mode {
	switch {
	case width < minimalWidth:
		return ModeMinimal
	case width < fullWidth:
		return ModeCompact
	default:
		return ModeFull
	}
}

// Options controls a single render pass. The zero value is not usable
// directly; Render fills in defaults for unset fields.
type Options struct {
	Width int
	// Height pins the watch-mode viewport. One-shot output ignores it.
	Height       int
	ColorEnabled bool
	Theme        Theme

	ShowDate         bool
	GraphOnly        bool
	ShowAchievements bool
	ShowLanguages    bool
	ShowIssues       bool
	ShowPullRequests bool
	ShowAccount      bool
	ShowGrid         bool

	// BoxGlyph overrides the contribution cell glyph.
	BoxGlyph string

	// TitleWidth and RepoWidth bound dashboard item truncation.
	TitleWidth int
	RepoWidth  int

	// Now supplies the footer date; the zero value means time.Now.
	Now time.Time
}

// DefaultOptions returns options with every section enabled at the
// standard fallback width.
func DefaultOptions() Options {
	return Options{
		Width:            minimalWidth,
		ColorEnabled:     true,
		ShowAchievements: true,
		ShowLanguages:    true,
		ShowIssues:       true,
		ShowPullRequests: true,
		ShowAccount:      true,
		ShowGrid:         true,
		TitleWidth:       40,
		RepoWidth:        20,
	}
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = minimalWidth
	}
	if o.TitleWidth <= 0 {
		o.TitleWidth = 40
	}
	if o.RepoWidth <= 0 {
		o.RepoWidth = 20
	}
	if o.Theme == nil {
		o.Theme = DefaultTheme()
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

type renderer struct {
	opts  Options
	theme Theme
}

func (r *renderer) colorize(s, name string) string {
	return r.theme.Colorize(s, name, r.opts.ColorEnabled)
}

// JoinBlocks places blocks side by side: each block's lines are padded to
// the block's own maximum display width, then rows are joined with gap
// spaces. Shorter blocks contribute blank rows.
func JoinBlocks(gap int, blocks ...[]string) []string {
	var kept [][]string
	for _, b := range blocks {
		if len(b) > 0 {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return kept[0]
	}

	widths := make([]int, len(kept))
	rows := 0
	for i, b := range kept {
		widths[i] = maxLineWidth(b)
		if len(b) > rows {
			rows = len(b)
		}
	}

	spacer := strings.Repeat(" ", gap)
	out := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		for i, block := range kept {
			if i > 0 {
				b.WriteString(spacer)
			}
			line := ""
			if row < len(block) {
				line = block[row]
			}
			b.WriteString(Pad(line, widths[i]))
		}
		out = append(out, strings.TrimRight(b.String(), " "))
	}
	return out
}

// WrapGrid packs blocks left to right into visual rows whose combined
// width stays within maxWidth, joining each row side by side with one
// blank line between rows. A block wider than maxWidth still gets a row
// of its own.
func WrapGrid(maxWidth, gap int, blocks ...[]string) []string {
	var kept [][]string
	for _, b := range blocks {
		if len(b) > 0 {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	var out []string
	var row [][]string
	rowWidth := 0

	flush := func() {
		if len(row) == 0 {
			return
		}
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, JoinBlocks(gap, row...)...)
		row = nil
		rowWidth = 0
	}

	for _, block := range kept {
		w := maxLineWidth(block)
		next := rowWidth + w
		if len(row) > 0 {
			next += gap
		}
		if len(row) > 0 && next > maxWidth {
			flush()
			next = w
		}
		row = append(row, block)
		rowWidth = next
	}
	flush()
	return out
}

// Render is the single entry point of the display core: a pure function
// from profile, stats and options to printable lines. The result always
// ends with exactly one blank line.
func Render(profile stats.Profile, bundle stats.Bundle, opts Options) []string {
	r := &renderer{opts: opts.normalized()}
	r.theme = r.opts.Theme

	mode := DetectMode(r.opts.Width)
	if r.opts.GraphOnly {
		mode = ModeMinimal
	}

	var lines []string
	switch mode {
	case ModeCompact:
		lines = r.renderCompact(profile, bundle)
	case ModeFull:
		lines = r.renderFull(profile, bundle)
	default:
		lines = r.renderMinimal(bundle)
	}

	if r.opts.ShowDate {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		stamp := "Generated on " + r.opts.Now.Format("2006-01-02")
		lines = append(lines, r.colorize(stamp, "muted"))
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return append(lines, "")
}

func (r *renderer) renderMinimal(bundle stats.Bundle) []string {
	if !r.opts.ShowGrid {
		return nil
	}
	return r.buildGraph(bundle.Graph, r.opts.Width-graphMargin)
}

func (r *renderer) renderCompact(profile stats.Profile, bundle stats.Bundle) []string {
	budget := (r.opts.Width - 10) / 2
	if budget < 40 {
		budget = 40
	}

	var graph, identity []string
	if r.opts.ShowGrid {
		graph = r.buildGraph(bundle.Graph, budget)
	}
	if r.opts.ShowAccount {
		identity = r.identityCompact(profile, bundle)
	}
	return JoinBlocks(columnGap, graph, identity)
}

func (r *renderer) renderFull(profile stats.Profile, bundle stats.Bundle) []string {
	budget := (r.opts.Width - 10) / 2
	if budget < 50 {
		budget = 50
	}

	var left []string
	if r.opts.ShowGrid {
		left = r.buildGraph(bundle.Graph, budget)
	}
	gridWidth := maxLineWidth(left)
	if gridWidth == 0 {
		gridWidth = budget
	}

	var sections [][]string
	if r.opts.ShowAchievements {
		sections = append(sections, r.achievements(bundle.Graph))
	}
	sections = append(sections, r.overview(bundle))
	if r.opts.ShowPullRequests {
		sections = append(sections, r.dashboard("Pull Requests", bundle.PullRequests))
	}
	if r.opts.ShowIssues {
		sections = append(sections, r.dashboard("Issues", bundle.Issues))
	}
	if grid := WrapGrid(gridWidth, columnGap, sections...); len(grid) > 0 {
		if len(left) > 0 {
			left = append(left, "")
		}
		left = append(left, grid...)
	}

	var right []string
	if r.opts.ShowAccount {
		right = r.identityFull(profile, bundle)
	}
	if r.opts.ShowLanguages {
		if langs := r.languages(bundle.Languages); len(langs) > 0 {
			if len(right) > 0 {
				right = append(right, "")
			}
			right = append(right, langs...)
		}
	}

	return JoinBlocks(columnGap, left, right)
}
