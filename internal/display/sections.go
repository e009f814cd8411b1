package display

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gitfetch/gitfetch/internal/stats"
)

const (
	labelWidth        = 12
	barWidth          = 24
	maxLanguages      = 5
	maxDashboardItems = 3
)

// sectionHeader returns an upper-cased accent title over a muted rule of
// the same width.
func (r *renderer) sectionHeader(title string) []string {
	heading := strings.ToUpper(title)
	underline := strings.Repeat("─", Width(heading))
	return []string{
		r.colorize(heading, "accent"),
		r.colorize(underline, "muted"),
	}
}

// label formats a left-aligned "Name:" label padded to the fixed column.
func (r *renderer) label(text string) string {
	padded := fmt.Sprintf("%-*s", labelWidth, text+":")
	return r.colorize(padded, "bold")
}

func (r *renderer) statLine(label string, value any) string {
	return fmt.Sprintf("%s %v", r.label(label), value)
}

// overview renders the repository/star/fork counters.
func (r *renderer) overview(bundle stats.Bundle) []string {
	lines := r.sectionHeader("Overview")
	lines = append(lines,
		r.statLine("Repositories", bundle.TotalRepos),
		r.statLine("Stars", bundle.TotalStars),
		r.statLine("Forks", bundle.TotalForks),
	)
	return lines
}

// languages renders the top five languages with proportional bars. Ties
// keep the input order.
func (r *renderer) languages(langs []stats.Language) []string {
	if len(langs) == 0 {
		return nil
	}

	sorted := make([]stats.Language, len(langs))
	copy(sorted, langs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percentage > sorted[j].Percentage
	})
	if len(sorted) > maxLanguages {
		sorted = sorted[:maxLanguages]
	}

	lines := r.sectionHeader("Top Languages")
	for _, lang := range sorted {
		lines = append(lines, r.languageLine(lang.Name, lang.Percentage))
	}
	return lines
}

func (r *renderer) languageLine(name string, percentage float64) string {
	padded := r.colorize(fmt.Sprintf("%-*s", labelWidth, name), "bold")
	return fmt.Sprintf("  %s %s %5.1f%%", padded, r.progressBar(percentage), percentage)
}

// progressBar renders a bar of filled and empty cells for a percentage.
func (r *renderer) progressBar(percentage float64) string {
	capped := math.Max(0, math.Min(percentage, 100))
	filled := int(math.Round(capped / 100 * barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("█", filled)
	if bar != "" {
		bar = r.colorize(bar, "green")
	}
	return bar + strings.Repeat("░", barWidth-filled)
}

// achievements renders the badge section. The section disappears entirely
// when no badge qualifies; the contribution milestone shows only the
// highest tier reached.
func (r *renderer) achievements(cal stats.Calendar) []string {
	current, best := stats.Streaks(cal)
	total := stats.Total(cal)

	var badges []string
	if current > 0 {
		badges = append(badges, fmt.Sprintf("%s Current Streak: %d day%s",
			r.colorize("🔥", "red"), current, plural(current)))
	}
	if best > 0 {
		badges = append(badges, fmt.Sprintf("%s Best Streak: %d day%s",
			r.colorize("⭐", "yellow"), best, plural(best)))
	}
	switch {
	case total >= 10000:
		badges = append(badges, r.colorize("💎", "magenta")+" 10,000+ Contributions")
	case total >= 5000:
		badges = append(badges, r.colorize("👑", "yellow")+" 5,000+ Contributions")
	case total >= 1000:
		badges = append(badges, r.colorize("🎖️", "cyan")+" 1,000+ Contributions")
	case total >= 100:
		badges = append(badges, r.colorize("🏆", "yellow")+" 100+ Contributions")
	}

	if len(badges) == 0 {
		return nil
	}
	return append(r.sectionHeader("Achievements"), badges...)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// dashboard renders a titled set of item groups, e.g. the open pull
// requests or assigned issues. Every group appears, empty ones with a
// literal None entry; groups are separated by one blank line.
func (r *renderer) dashboard(title string, groups []stats.DashboardGroup) []string {
	if len(groups) == 0 {
		return nil
	}

	lines := r.sectionHeader(title)
	for i, group := range groups {
		header := fmt.Sprintf("%s (%d)", group.Name, group.TotalCount)
		lines = append(lines, r.colorize(header, "bold"))

		items := group.Items
		if len(items) > maxDashboardItems {
			items = items[:maxDashboardItems]
		}
		if len(items) == 0 {
			lines = append(lines, r.colorize("• None", "muted"))
		}
		for _, item := range items {
			name := Truncate(item.Title, r.opts.TitleWidth)
			repo := Truncate(item.Repo, r.opts.RepoWidth)
			lines = append(lines, fmt.Sprintf("• %s (%s)", name, repo))
		}

		if i < len(groups)-1 {
			lines = append(lines, "")
		}
	}
	return lines
}

// identityCompact is the short summary shown beside the graph in compact
// layout: headline, optional bio and two counters.
func (r *renderer) identityCompact(profile stats.Profile, bundle stats.Bundle) []string {
	lines := []string{r.colorize(r.headline(profile, bundle), "accent")}

	if bio := flattenText(profile.Bio); bio != "" {
		lines = append(lines, r.colorize(Truncate(bio, 60), "muted"))
	}

	lines = append(lines,
		fmt.Sprintf("Repos: %d", bundle.TotalRepos),
		fmt.Sprintf("Stars: %d", bundle.TotalStars),
	)
	return lines
}

// identityFull is the right-column identity block of the full layout.
// Optional profile fields are omitted rather than rendered empty.
func (r *renderer) identityFull(profile stats.Profile, bundle stats.Bundle) []string {
	headline := r.headline(profile, bundle)
	lines := []string{
		r.colorize(headline, "accent"),
		r.colorize(strings.Repeat("─", Width(headline)), "muted"),
	}

	if bio := flattenText(profile.Bio); bio != "" {
		lines = append(lines, fmt.Sprintf("%s %s", r.label("Bio"), Truncate(bio, 80)))
	}
	if profile.Company != "" {
		lines = append(lines, fmt.Sprintf("%s %s", r.label("Company"), profile.Company))
	}
	if profile.Website != "" {
		lines = append(lines, fmt.Sprintf("%s %s", r.label("Website"), profile.Website))
	}
	return lines
}

// headline is the "name - 1,234 contributions this year" line.
func (r *renderer) headline(profile stats.Profile, bundle stats.Bundle) string {
	total := bundle.TotalContributions
	if total == 0 {
		total = stats.Total(bundle.Graph)
	}
	return fmt.Sprintf("%s - %s contributions this year",
		profile.DisplayName(), formatCount(total))
}

// flattenText collapses a multi-line field into one trimmed line.
func flattenText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// formatCount renders n with comma-grouped thousands.
func formatCount(n int) string {
	negative := n < 0
	if negative {
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	var result []rune
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, digit)
	}

	if negative {
		return "-" + string(result)
	}
	return string(result)
}
