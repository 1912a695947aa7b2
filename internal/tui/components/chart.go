package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// Bar is one column of a BarChart.
type Bar struct {
	Value float64
	Label string
	Color lipgloss.Color // empty uses the theme accent
}

// BarChart renders vertical bars with a y-axis. A positive limit draws a
// dotted guide line at that value, e.g. the monthly mileage allowance.
// Charts too small for an axis fall back to a sparkline.
func BarChart(bars []Bar, limit float64, width, height int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	if width < 15 || height < 3 {
		values := make([]float64, len(bars))
		for i, b := range bars {
			values[i] = b.Value
		}
		return Sparkline(values, t.Accent)
	}

	maxVal := limit
	for _, b := range bars {
		if b.Value > maxVal {
			maxVal = b.Value
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	// Y-axis ticks: a round step that fits about one tick per two rows.
	tickStep := chartTickStep(maxVal)
	maxIntervals := max(2, height/2)
	for int(math.Ceil(maxVal/tickStep)) > maxIntervals {
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	numIntervals := max(1, int(math.Round(ceiling/tickStep)))
	rowsPerTick := max(2, height/numIntervals)
	chartH := rowsPerTick * numIntervals

	yLabelW := max(4, len(formatChartLabel(ceiling))+1)
	tickLabels := make(map[int]string, numIntervals)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(tickStep * float64(i))
	}

	chartW := max(5, width-yLabelW-1)
	n := len(bars)
	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	if barW < 1 {
		// Keep the most recent bars that fit.
		keep := max(1, (chartW+1)/2)
		bars = bars[n-keep:]
		n = keep
		barW = 1
	}
	barW = min(barW, 6)
	axisLen := n*barW + max(0, n-1)*gap

	limitRow := -1
	if limit > 0 {
		limitRow = int(math.Round(limit / ceiling * float64(chartH)))
	}

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)
	limitStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := ceiling * float64(row) / float64(chartH)
		rowBottom := ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i, bar := range bars {
			if i > 0 && gap > 0 {
				if row == limitRow {
					b.WriteString(limitStyle.Render("┄"))
				} else {
					b.WriteString(blankStyle.Render(" "))
				}
			}
			color := bar.Color
			if color == "" {
				color = t.Accent
			}
			barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

			switch {
			case bar.Value >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case bar.Value > rowBottom:
				frac := (bar.Value - rowBottom) / (rowTop - rowBottom)
				idx := max(1, min(int(frac*8), 8))
				b.WriteString(barStyle.Render(strings.Repeat(string(blocks[idx]), barW)))
			case row == limitRow:
				b.WriteString(limitStyle.Render(strings.Repeat("┄", barW)))
			default:
				b.WriteString(blankStyle.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	// X-axis labels, skipping any that would collide with the previous one.
	labels := make([]byte, axisLen)
	for i := range labels {
		labels[i] = ' '
	}
	lastEnd := -1
	for i, bar := range bars {
		pos := i * (barW + gap)
		lbl := bar.Label
		if lbl == "" || pos <= lastEnd {
			continue
		}
		end := min(pos+len(lbl), axisLen)
		if end-pos < len(lbl) && end-pos < 3 {
			continue
		}
		copy(labels[pos:end], lbl[:end-pos])
		lastEnd = end
	}
	if strings.TrimSpace(string(labels)) != "" {
		b.WriteString("\n")
		b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(string(labels), " ")))
	}

	return b.String()
}

// chartTickStep computes a round tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel renders a mileage tick, abbreviating thousands.
func formatChartLabel(v float64) string {
	switch {
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
