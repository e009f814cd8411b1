package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gitfetch/gitfetch/internal/display"
	"github.com/gitfetch/gitfetch/internal/stats"
)

const (
	spinnerFrames = "⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏"

	// frameInterval drives the spinner; refreshes are far apart, so the
	// two tick streams stay separate
	frameInterval      = 120 * time.Millisecond
	minRefreshInterval = 30 * time.Second
)

// FetchFunc retrieves fresh data for the watched account.
type FetchFunc func(ctx context.Context) (stats.Profile, stats.Bundle, error)

// frameMsg advances the spinner
type frameMsg time.Time

// tickMsg triggers a periodic refresh
type tickMsg time.Time

// refreshedMsg carries the result of a fetch
type refreshedMsg struct {
	profile stats.Profile
	bundle  stats.Bundle
	err     error
}

// Model is the Bubble Tea model for watch mode: it re-renders the
// dashboard on every resize and refreshes data on an interval.
type Model struct {
	profile  stats.Profile
	bundle   stats.Bundle
	opts     display.Options
	fetch    FetchFunc
	interval time.Duration

	width      int
	height     int
	refreshing bool
	frame      int
	lastUpdate time.Time
	err        error
}

// NewModel seeds watch mode with already-fetched data. The interval is
// floored so a tiny cache expiry cannot hammer the provider.
func NewModel(profile stats.Profile, bundle stats.Bundle, opts display.Options, interval time.Duration, fetch FetchFunc) *Model {
	if interval < minRefreshInterval {
		interval = minRefreshInterval
	}
	return &Model{
		profile:    profile,
		bundle:     bundle,
		opts:       opts,
		fetch:      fetch,
		interval:   interval,
		width:      opts.Width,
		lastUpdate: time.Now(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.frameTick(), m.refreshTick())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}

	case frameMsg:
		if m.refreshing {
			m.frame++
		}
		return m, m.frameTick()

	case tickMsg:
		return m, tea.Batch(m.refreshTick(), m.refresh())

	case refreshedMsg:
		m.refreshing = false
		m.lastUpdate = time.Now()
		if msg.err != nil {
			// Keep showing the stale data alongside the error.
			m.err = msg.err
		} else {
			m.err = nil
			m.profile = msg.profile
			m.bundle = msg.bundle
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	opts := m.opts
	opts.Width = m.width

	var b strings.Builder
	b.WriteString(TitleStyle.Render("gitfetch"))
	if login := m.profile.Login; login != "" {
		b.WriteString(StatusStyle.Render(" watching " + login))
	}
	b.WriteString("\n\n")

	for _, line := range display.Render(m.profile, m.bundle, opts) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(ErrorStyle.Render("refresh failed: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("r refresh • q quit"))

	view := b.String()
	if limit := m.viewportHeight(); limit > 0 {
		view = clipHeight(view, limit)
	}
	return view
}

// viewportHeight is the pinned height when the user set one, otherwise
// the height the terminal last reported.
func (m *Model) viewportHeight() int {
	if m.opts.Height > 0 {
		return m.opts.Height
	}
	return m.height
}

func clipHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func (m *Model) statusLine() string {
	if m.refreshing {
		frames := []rune(spinnerFrames)
		return StatusStyle.Render(string(frames[m.frame%len(frames)]) + " refreshing")
	}
	return StatusStyle.Render("updated " + m.lastUpdate.Format("15:04:05"))
}

func (m *Model) frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) refreshTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh starts a fetch unless one is already in flight.
func (m *Model) refresh() tea.Cmd {
	if m.refreshing || m.fetch == nil {
		return nil
	}
	m.refreshing = true
	fetch := m.fetch
	return func() tea.Msg {
		profile, bundle, err := fetch(context.Background())
		return refreshedMsg{profile: profile, bundle: bundle, err: err}
	}
}

// Run starts watch mode and blocks until the user quits.
func Run(profile stats.Profile, bundle stats.Bundle, opts display.Options, interval time.Duration, fetch FetchFunc) error {
	p := tea.NewProgram(
		NewModel(profile, bundle, opts, interval, fetch),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
