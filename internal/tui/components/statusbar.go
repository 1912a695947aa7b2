package components

import (
	"strings"

	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports about the last refresh.
type StatusInfo struct {
	DataAge     string // "3m ago"; empty before the first load
	Refreshing  bool
	AutoRefresh bool
	Stale       bool   // figures come from a cached reading
	Message     string // last error or provider notice
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
	bad := lipgloss.NewStyle().Foreground(t.Bad).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")
	if s.Message != "" {
		style := warn
		if s.Stale {
			style = bad
		}
		left += base.Render("  ") + style.Render(s.Message)
	}

	var right string
	switch {
	case s.Refreshing:
		right = accent.Render("refreshing… ")
	case s.Stale && s.DataAge != "":
		right = bad.Render("stale · " + s.DataAge + " ")
	case s.DataAge != "":
		right = base.Render("Data: " + s.DataAge + " ")
	}
	if s.AutoRefresh {
		right = accent.Render("auto ") + right
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Drop the message before the right-hand status.
		left = base.Render(" [?]help  [q]uit")
		gap = width - lipgloss.Width(left) - lipgloss.Width(right)
		if gap < 0 {
			gap = 0
		}
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(width).
		Render(left + base.Render(strings.Repeat(" ", gap)) + right)
}
