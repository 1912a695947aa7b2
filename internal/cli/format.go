// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leaselad/leaselad/internal/model"
)

// FormatMiles rounds to whole miles with comma separators.
// e.g., 5034.4 -> "5,034". NaN and infinities render as "n/a".
func FormatMiles(miles float64) string {
	if math.IsNaN(miles) || math.IsInf(miles, 0) {
		return "n/a"
	}
	return FormatNumber(int64(math.Round(miles)))
}

// FormatSignedMiles formats a variance with an explicit sign.
// e.g., 1000 -> "+1,000", -2466 -> "-2,466", 0 -> "0".
func FormatSignedMiles(miles float64) string {
	s := FormatMiles(miles)
	if s == "n/a" || math.Round(miles) <= 0 {
		return s
	}
	return "+" + s
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value with one decimal.
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDays formats a day count, rounded to whole days.
func FormatDays(days float64) string {
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return "n/a"
	}
	n := int64(math.Round(days))
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d day", n)
	}
	return FormatNumber(n) + " days"
}

// FormatDate formats a date like "Jul 1, 2027".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Format("Jan 2, 2006")
}

// FormatTemp renders a Celsius reading as whole degrees Fahrenheit.
func FormatTemp(celsius *float64) string {
	f := model.ToFahrenheit(celsius)
	if f == nil {
		return "--"
	}
	return fmt.Sprintf("%d°F", *f)
}

// FormatOptional renders a pointer value with a suffix, or "--" when nil.
func FormatOptional(v *float64, suffix string) string {
	if v == nil {
		return "--"
	}
	return FormatMiles(*v) + suffix
}

// FormatAge formats how long ago t was, e.g. "3m ago".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
