package components

import (
	"strings"

	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tab indexes, in display order.
const (
	TabDashboard = iota
	TabVehicle
	TabHistory
	TabSettings
)

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Dashboard", Key: 'd', KeyPos: 0},
	{Name: "Vehicle", Key: 'v', KeyPos: 0},
	{Name: "History", Key: 'h', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1},
}

// tabLabel returns the unstyled label pieces: text before the key, the key,
// and text after it. Active tabs show the bare name.
func tabLabel(tab Tab, active bool) (before, key, after string) {
	if active {
		return tab.Name, "", ""
	}
	if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
		return tab.Name[:tab.KeyPos], string(tab.Name[tab.KeyPos]), tab.Name[tab.KeyPos+1:]
	}
	return tab.Name, string(tab.Key), ""
}

// TabVisualWidth returns the rendered width of a tab including its padding.
// Mouse hit-testing relies on this matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	before, key, after := tabLabel(tab, active)
	w := len(before) + len(after) + 2
	if key != "" {
		w += 3 // "[k]"
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)

	pad := lipgloss.NewStyle().Background(t.Surface)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimKeyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}
		before, key, after := tabLabel(tab, false)
		parts = append(parts, pad.Render(" ")+
			inactiveStyle.Render(before)+
			dimKeyStyle.Render("[")+keyStyle.Render(key)+dimKeyStyle.Render("]")+
			inactiveStyle.Render(after)+
			pad.Render(" "))
	}

	row := strings.Join(parts, pad.Render(" "))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
