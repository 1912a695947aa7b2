package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/leaselad/leaselad/internal/cli"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/tui/components"
	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

type statusRow struct {
	label string
	value string
	color lipgloss.Color
}

// vehicleRows lists the status rows shown for v.
func vehicleRows(v model.Vehicle) []statusRow {
	t := theme.Active

	battery := statusRow{label: "Battery", value: cli.BatteryLabel(v)}
	switch {
	case cli.BatteryLow(v):
		battery.color = t.Bad
	case v.IsCharging():
		battery.color = t.Info
	}

	rng := statusRow{label: "Ideal Range", value: cli.FormatOptional(v.IdealRange, " mi")}
	if cli.RangeLow(v) {
		rng.color = t.Bad
	}

	lock := statusRow{label: "Doors", value: cli.LockLabel(v)}
	if v.Locked != nil && !*v.Locked {
		lock.color = t.Warn
	}

	sentry := statusRow{label: "Sentry Mode", value: cli.SentryLabel(v)}
	if v.SentryMode != nil && *v.SentryMode {
		sentry.color = t.Good
	}

	state := v.State
	if state == "" {
		state = "--"
	}

	return []statusRow{
		{label: "State", value: state},
		battery,
		rng,
		{label: "Charging", value: v.ChargingState},
		lock,
		sentry,
		{label: "Outside", value: cli.FormatTemp(v.OutsideTemp)},
		{label: "Inside", value: cli.FormatTemp(v.InsideTemp)},
	}
}

func (a App) renderVehicleTab(cw int) string {
	t := theme.Active
	v := *a.result.Vehicle

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	linkStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Underline(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	rows := vehicleRows(v)
	var status strings.Builder
	for i, row := range rows {
		style := valueStyle
		if row.color != "" {
			style = style.Foreground(row.color).Bold(true)
		}
		status.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", row.label)))
		status.WriteString(style.Render(row.value))
		if i < len(rows)-1 {
			status.WriteString("\n")
		}
	}

	var loc strings.Builder
	if v.HasLocation() {
		loc.WriteString(valueStyle.Render(fmt.Sprintf("%.4f, %.4f", *v.Latitude, *v.Longitude)))
		loc.WriteString("\n")
		loc.WriteString(linkStyle.Render(v.MapURL()))
	} else {
		loc.WriteString(dimStyle.Render("Location unavailable"))
	}

	var info strings.Builder
	info.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", "VIN")) + valueStyle.Render(model.MaskedVIN(v.VIN)) + "\n")
	info.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", "Source")) + valueStyle.Render(v.Source) + "\n")
	info.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", "Observed")) + valueStyle.Render(cli.FormatAge(v.FetchedAt, time.Now())))
	if v.Notice != "" {
		info.WriteString("\n" + lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).Render(v.Notice))
	}

	title := v.Name
	if title == "" {
		title = "Vehicle"
	}

	if a.isCompactLayout() {
		return components.ContentCard(title, status.String(), cw) + "\n" +
			components.ContentCard("Location", loc.String(), cw) + "\n" +
			components.ContentCard("Source", info.String(), cw)
	}

	widths := components.LayoutRow(cw, 2)
	right := components.ContentCard("Location", loc.String(), widths[1]) + "\n" +
		components.ContentCard("Source", info.String(), widths[1])
	return components.CardRow([]string{
		components.ContentCard(title, status.String(), widths[0]),
		right,
	})
}
