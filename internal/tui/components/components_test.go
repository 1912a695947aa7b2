package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselad/leaselad/internal/tui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsExactly(t *testing.T) {
	widths := LayoutRow(100, 3)
	assert.Equal(t, []int{34, 33, 33}, widths)
	assert.Nil(t, LayoutRow(10, 0))
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	row := MetricCardRow([]Metric{
		{Label: "Odometer", Value: "5,034 mi"},
		{Label: "Allowed", Value: "7,500 mi", Detail: "@ 1,250/mo", Color: theme.Active.Good},
	}, 60)

	for _, line := range strings.Split(row, "\n") {
		assert.Equal(t, 60, lipgloss.Width(line))
	}
	plain := ansi.Strip(row)
	assert.Contains(t, plain, "5,034 mi")
	assert.Contains(t, plain, "@ 1,250/mo")
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := ansi.Strip(RenderTabBar(active, 200))
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += len(Tabs) - 1
		assert.Equal(t, want, len(strings.TrimRight(bar, " ")), "active=%d", active)
	}
}

func TestTabIdxByKey(t *testing.T) {
	assert.Equal(t, TabVehicle, TabIdxByKey('v'))
	assert.Equal(t, TabSettings, TabIdxByKey('x'))
	assert.Equal(t, -1, TabIdxByKey('z'))
}

func TestLeaseBarClamps(t *testing.T) {
	over := ansi.Strip(LeaseBar("Miles", 1.7, theme.Active.Bad, 6, 20))
	assert.Contains(t, over, "100%")

	nan := ansi.Strip(LeaseBar("Time", 0/zero(), theme.Active.Accent, 6, 20))
	assert.Contains(t, nan, "  0%")
}

func zero() float64 { return 0 }

func TestTodayMarkerPosition(t *testing.T) {
	start := ansi.Strip(TodayMarker(0, 6, 20))
	assert.Equal(t, 7, strings.Index(start, "▲"))

	end := ansi.Strip(TodayMarker(1, 6, 20))
	assert.True(t, strings.HasSuffix(end, "Today ▲"))
	assert.LessOrEqual(t, lipgloss.Width(end), 6+1+20)
}

func TestStatusBarShowsStaleAndMessage(t *testing.T) {
	bar := ansi.Strip(RenderStatusBar(120, StatusInfo{
		DataAge: "3m ago",
		Stale:   true,
		Message: "tessie: rate limited",
	}))
	assert.Contains(t, bar, "stale · 3m ago")
	assert.Contains(t, bar, "rate limited")
	assert.Equal(t, 120, lipgloss.Width(bar))

	narrow := ansi.Strip(RenderStatusBar(40, StatusInfo{DataAge: "now", Message: strings.Repeat("x", 60)}))
	assert.NotContains(t, narrow, "xxx")
}

func TestBarChartDrawsLimitAndLabels(t *testing.T) {
	chart := ansi.Strip(BarChart([]Bar{
		{Value: 900, Label: "Jul"},
		{Value: 1600, Label: "Aug", Color: theme.Active.Bad},
		{Value: 1100, Label: "Sep"},
	}, 1250, 40, 8))

	lines := strings.Split(chart, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, chart, "┄")
	assert.Contains(t, lines[len(lines)-1], "Jul")
	assert.Contains(t, lines[len(lines)-1], "Sep")
}

func TestBarChartFallsBackToSparkline(t *testing.T) {
	out := ansi.Strip(BarChart([]Bar{{Value: 1}, {Value: 2}}, 0, 10, 2))
	assert.Equal(t, "▁█", out)
	assert.Empty(t, BarChart(nil, 0, 40, 8))
}

func TestChartTickStep(t *testing.T) {
	assert.Equal(t, 1.0, chartTickStep(0))
	assert.Equal(t, 500.0, chartTickStep(2000))
	assert.Equal(t, "1.5k", formatChartLabel(1500))
	assert.Equal(t, "2k", formatChartLabel(2000))
}
