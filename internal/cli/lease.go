package cli

import (
	"fmt"
	"math"

	"github.com/leaselad/leaselad/internal/model"
)

// HealthSentence explains the variance in words.
func HealthSentence(s model.LeaseStats) string {
	dir := "less"
	if s.IsOver {
		dir = "more"
	}
	months := "months"
	if s.TotalMonthsAllowed == 1 {
		months = "month"
	}
	return fmt.Sprintf("You have driven %s miles %s than expected for %d full %s.",
		FormatMiles(math.Abs(s.Variance)), dir, s.TotalMonthsAllowed, months)
}

// VarianceLabel names the variance as a deficit or a buffer.
func VarianceLabel(s model.LeaseStats) string {
	if s.IsOver {
		return FormatMiles(s.Variance) + " mi deficit"
	}
	return FormatMiles(math.Abs(s.Variance)) + " mi buffer"
}

// ProjectionLabel describes the projected end-of-lease position.
func ProjectionLabel(s model.LeaseStats) string {
	if s.ProjectedOver() {
		return FormatMiles(s.ProjectedVariance) + " mi over limit"
	}
	return FormatMiles(math.Abs(s.ProjectedVariance)) + " mi under limit"
}

// MileagePercent is driven miles as a share of the allowance, capped at 100.
func MileagePercent(s model.LeaseStats, totalMiles float64) float64 {
	if totalMiles <= 0 {
		return 0
	}
	return math.Min(100, s.ActualDriven/totalMiles*100)
}

// BatteryLow reports whether the battery is under 20%.
func BatteryLow(v model.Vehicle) bool {
	return v.BatteryLevel != nil && *v.BatteryLevel < 20
}

// RangeLow reports whether the ideal range is under 50 miles.
func RangeLow(v model.Vehicle) bool {
	return v.IdealRange != nil && *v.IdealRange < 50
}

// LockLabel renders the lock state.
func LockLabel(v model.Vehicle) string {
	switch {
	case v.Locked == nil:
		return "Unknown"
	case *v.Locked:
		return "Locked"
	default:
		return "Unlocked"
	}
}

// SentryLabel renders the sentry mode state.
func SentryLabel(v model.Vehicle) string {
	switch {
	case v.SentryMode == nil:
		return "Unknown"
	case *v.SentryMode:
		return "Active"
	default:
		return "Off"
	}
}

// BatteryLabel renders the battery level with a charging marker.
func BatteryLabel(v model.Vehicle) string {
	s := FormatOptional(v.BatteryLevel, "%")
	if v.IsCharging() {
		s += " (charging)"
	}
	return s
}
