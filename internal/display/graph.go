package display

import (
	"fmt"
	"strings"

	"github.com/gitfetch/gitfetch/internal/stats"
)

const (
	// Each week renders as one glyph plus one separator column.
	weekColumns = 2
	// Columns reserved left of the grid for the margin shared by the
	// month labels, the weekday rows and the legend.
	graphMargin = 4

	minGraphWeeks = 13
	maxGraphWeeks = 52

	defaultGlyph = "■"
)

var monthNames = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MaxWeeks returns how many week columns fit in a display-width budget.
// The result is clamped to [13, 52]: a narrow terminal still gets a
// minimum-useful graph and a wide one never shows more than a year.
func MaxWeeks(budget int) int {
	weeks := (budget - graphMargin) / weekColumns
	if weeks < minGraphWeeks {
		return minGraphWeeks
	}
	if weeks > maxGraphWeeks {
		return maxGraphWeeks
	}
	return weeks
}

// Level buckets a day count into one of the five intensity levels used by
// both the grid and the legend: 0, 1-2, 3-5, 6-9, 10+.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 2:
		return 1
	case count <= 5:
		return 2
	case count <= 9:
		return 3
	default:
		return 4
	}
}

// legendCounts are representative day counts, one per intensity level,
// so the legend goes through the exact mapping the grid uses.
var legendCounts = [...]int{0, 1, 3, 6, 10}

var marginStr = strings.Repeat(" ", graphMargin)

// buildGraph renders a contribution calendar into a block: month labels,
// seven weekday rows and the intensity legend. An empty calendar yields
// the placeholder line instead.
func (r *renderer) buildGraph(cal stats.Calendar, budget int) []string {
	weeks := cal.Trim(maxGraphWeeks)
	if len(weeks) == 0 {
		return []string{marginStr + r.colorize("No contribution data yet", "muted")}
	}
	weeks = weeks.Trim(MaxWeeks(budget))

	var lines []string
	if month := r.monthLine(weeks); strings.TrimSpace(month) != "" {
		lines = append(lines, month)
	}

	for row := 0; row < 7; row++ {
		var b strings.Builder
		b.WriteString(marginStr)
		for _, week := range weeks {
			if row < len(week.Days) {
				b.WriteString(r.dayBlock(week.Days[row].Count))
			} else {
				// Missing trailing day of a partial week.
				b.WriteString("  ")
			}
		}
		lines = append(lines, b.String())
	}

	lines = append(lines, "", r.legendLine())
	return lines
}

// monthLine builds the header aligned to week columns: a label starts at
// column index*2 whenever a kept week begins a new month, and the first
// kept week is always labeled. A label whose slot is already covered by
// the previous label is clamped to start right after it, never on top.
func (r *renderer) monthLine(weeks stats.Calendar) string {
	var b strings.Builder
	last := 0
	first := true
	for idx, week := range weeks {
		if len(week.Days) == 0 {
			continue
		}
		date := week.Days[0].Date
		if date.IsZero() {
			continue
		}
		month := int(date.Month())
		if !first && month == last {
			continue
		}
		first = false
		last = month

		label := monthNames[month-1]
		target := idx * weekColumns
		if b.Len() < target {
			b.WriteString(strings.Repeat(" ", target-b.Len()))
		}
		b.WriteString(label)
	}
	if b.Len() == 0 {
		return ""
	}
	return marginStr + r.colorize(b.String(), "muted")
}

// dayBlock returns the two-column cell for one day: glyph plus separator.
func (r *renderer) dayBlock(count int) string {
	glyph := r.glyph()
	if !r.opts.ColorEnabled {
		return glyph + " "
	}
	level := fmt.Sprintf("level%d", Level(count))
	return r.theme.Colorize(glyph, level, true) + " "
}

// legendLine renders "Less ■ ■ ■ ■ ■ More" with one cell per level.
func (r *renderer) legendLine() string {
	var b strings.Builder
	b.WriteString(marginStr)
	b.WriteString(r.colorize("Less", "muted"))
	b.WriteByte(' ')
	for _, count := range legendCounts {
		b.WriteString(r.dayBlock(count))
	}
	b.WriteString(r.colorize("More", "muted"))
	return b.String()
}

func (r *renderer) glyph() string {
	if r.opts.BoxGlyph != "" {
		return r.opts.BoxGlyph
	}
	return defaultGlyph
}
