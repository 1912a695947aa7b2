package tui

import (
	"strings"

	"github.com/leaselad/leaselad/internal/cli"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/tui/components"
	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const barLabelW = 6

func (a App) renderDashboardTab(cw int) string {
	res := a.result
	s := res.Stats

	var b strings.Builder
	b.WriteString(a.renderHealthBanner(cw))
	b.WriteString("\n")
	b.WriteString(a.renderStatCards(s, cw))
	b.WriteString("\n")
	b.WriteString(renderVisualizer(res.Lease, s, cw))
	return b.String()
}

func (a App) renderHealthBanner(cw int) string {
	t := theme.Active
	res := a.result
	s := res.Stats
	color := t.Health(s.IsOver)

	badge := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(color).
		Bold(true).
		Padding(0, 1).
		Render(s.HealthLabel())
	headline := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true).
		Render(cli.VarianceLabel(s))
	sentence := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
		Render(cli.HealthSentence(s))
	gap := lipgloss.NewStyle().Background(t.Surface).Render("  ")

	title := res.Vehicle.Name + " · " + model.MaskedVIN(res.Vehicle.VIN)
	if a.opts.Demo {
		title += " · demo"
	}
	return components.ContentCard(title, badge+gap+headline+"\n"+sentence, cw)
}

func (a App) renderStatCards(s model.LeaseStats, cw int) string {
	t := theme.Active
	metrics := []components.Metric{
		{
			Label:  "Current Odometer",
			Value:  cli.FormatMiles(s.CurrentOdo) + " mi",
			Detail: cli.FormatMiles(s.ActualDriven) + " mi driven",
		},
		{
			Label:  "Allowed To Date",
			Value:  cli.FormatMiles(s.ExpectedMileage) + " mi",
			Detail: "@ " + cli.FormatMiles(s.MonthlyAllowance) + " mi/mo",
		},
		{
			Label:  "Lease Consumed",
			Value:  cli.FormatPercent(s.PctTimeElapsed),
			Detail: cli.FormatDays(s.DaysRemaining) + " left",
		},
		{
			Label:  "Projected End",
			Value:  cli.FormatMiles(s.ProjectedTotal) + " mi",
			Detail: cli.ProjectionLabel(s),
			Color:  t.Health(s.ProjectedOver()),
		},
	}

	if a.isCompactLayout() {
		return components.MetricCardRow(metrics[:2], cw) + "\n" +
			components.MetricCardRow(metrics[2:], cw)
	}
	return components.MetricCardRow(metrics, cw)
}

// renderVisualizer compares how much of the lease term has passed with how
// much of the mileage allowance has been used.
func renderVisualizer(lease model.LeaseConfig, s model.LeaseStats, cw int) string {
	t := theme.Active
	barW := components.CardInnerWidth(cw) - barLabelW - 6

	timeFrac := s.PctTimeElapsed / 100
	milesFrac := cli.MileagePercent(s, lease.TotalMiles) / 100
	milesColor := t.Info
	if milesFrac > timeFrac {
		milesColor = t.Bad
	}

	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(components.LeaseBar("Time", timeFrac, t.Accent, barLabelW, barW))
	b.WriteString("\n")
	b.WriteString(components.TodayMarker(timeFrac, barLabelW, barW))
	b.WriteString("\n")
	b.WriteString(components.LeaseBar("Miles", milesFrac, milesColor, barLabelW, barW))
	b.WriteString("\n\n")
	b.WriteString(dim.Render(cli.FormatDate(lease.StartDate) + " → " + cli.FormatDate(s.EndDate) +
		" · " + cli.FormatMiles(lease.TotalMiles) + " mi over " + cli.FormatNumber(int64(lease.LeaseMonths)) + " months"))

	return components.ContentCard("Time vs Mileage", b.String(), cw)
}
