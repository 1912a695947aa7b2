package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// clampFrac limits frac to [0, 1]; NaN becomes 0.
func clampFrac(frac float64) float64 {
	switch {
	case math.IsNaN(frac), frac < 0:
		return 0
	case frac > 1:
		return 1
	}
	return frac
}

// LeaseBar renders a labeled progress bar with a trailing percentage.
// frac is 0-1 and is clamped.
func LeaseBar(label string, frac float64, color lipgloss.Color, labelW, barWidth int) string {
	t := theme.Active
	frac = clampFrac(frac)

	if barWidth < 4 {
		barWidth = 4
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(frac) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", frac*100))
}

// TodayMarker renders a caret under a LeaseBar at frac, labeled "Today".
// labelW and barWidth must match the bar above it.
func TodayMarker(frac float64, labelW, barWidth int) string {
	t := theme.Active
	frac = clampFrac(frac)

	if barWidth < 4 {
		barWidth = 4
	}
	pos := int(math.Round(frac * float64(barWidth-1)))

	const tag = "▲ Today"
	tagW := lipgloss.Width(tag)

	// Flip the tag to the left of the caret when it would overflow.
	offset := labelW + 1 + pos
	text := tag
	if pos+tagW > barWidth {
		offset = labelW + 1 + pos - tagW + 1
		if offset < 0 {
			offset = 0
		}
		text = "Today ▲"
	}

	spaceStyle := lipgloss.NewStyle().Background(t.Surface)
	markStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	return spaceStyle.Render(strings.Repeat(" ", offset)) + markStyle.Render(text)
}
