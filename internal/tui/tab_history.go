package tui

import (
	"fmt"
	"strings"

	"github.com/leaselad/leaselad/internal/cli"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/tui/components"
	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// cycleBars turns cycles into chart bars, colored by whether each cycle
// stayed within its allowance.
func cycleBars(cycles []model.CycleStats) []components.Bar {
	t := theme.Active
	bars := make([]components.Bar, len(cycles))
	for i, c := range cycles {
		color := t.Good
		switch {
		case c.Over():
			color = t.Bad
		case c.Current:
			color = t.Accent
		}
		bars[i] = components.Bar{
			Value: c.Driven,
			Label: c.Start.Format("Jan"),
			Color: color,
		}
	}
	return bars
}

func (a App) renderHistoryTab(cw, h int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.cycles) == 0 {
		msg := "No cycles yet. The first monthly cycle opens on the lease start date."
		if a.opts.History == nil {
			msg = "Reading history is disabled (--no-cache)."
		}
		return components.ContentCard("Monthly Mileage", dim.Render(msg), cw)
	}

	allowed := a.cycles[0].Allowed
	chartH := max(4, min(12, h/2-4))
	chart := components.BarChart(cycleBars(a.cycles), allowed, components.CardInnerWidth(cw), chartH)
	legend := dim.Render(fmt.Sprintf("┄ allowance %s mi/mo", cli.FormatMiles(allowed)))

	var b strings.Builder
	b.WriteString(components.ContentCard("Monthly Mileage", chart+"\n"+legend, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Cycles", renderCycleTable(a.cycles, cw), cw))
	return b.String()
}

// renderCycleTable lists cycles newest first.
func renderCycleTable(cycles []model.CycleStats, cw int) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	const rowFmt = "%-4s %-26s %10s %10s %10s %8s"
	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf(rowFmt, "#", "Period", "Driven", "Allowed", "Diff", "Reads")))

	for i := len(cycles) - 1; i >= 0; i-- {
		c := cycles[i]
		period := cli.FormatDate(c.Start) + " – " + cli.FormatDate(c.End.AddDate(0, 0, -1))
		if c.Current {
			period = cli.FormatDate(c.Start) + " – now"
		}
		diff := c.Driven - c.Allowed
		line := fmt.Sprintf(rowFmt,
			fmt.Sprintf("%d", c.Index),
			period,
			cli.FormatMiles(c.Driven),
			cli.FormatMiles(c.Allowed),
			cli.FormatSignedMiles(diff),
			fmt.Sprintf("%d", c.Readings),
		)
		line = truncStr(line, components.CardInnerWidth(cw))

		style := rowStyle
		switch {
		case c.Current:
			style = style.Foreground(t.Accent)
		case c.Readings == 0:
			style = dimStyle
		case c.Over():
			style = style.Foreground(t.Bad)
		}
		b.WriteString("\n")
		b.WriteString(style.Render(line))
	}
	return b.String()
}
