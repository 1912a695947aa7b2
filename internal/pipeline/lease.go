// Package pipeline computes lease mileage statistics and loads the vehicle
// readings they are computed from.
package pipeline

import (
	"math"
	"time"

	"github.com/leaselad/leaselad/internal/model"
)

// minProjectionMonths keeps the projection finite before the first cycle.
const minProjectionMonths = 0.1

// ComputeLeaseStats derives the mileage picture for cfg at reference time ref.
//
// It is a pure function: no clock, no I/O, identical inputs give identical
// output. Out-of-range inputs are clamped rather than rejected: odometer
// regression floors ActualDriven at 0, a reference date before the start
// yields zero allowance, and one past the end caps at the full term.
//
// cfg is assumed valid (see LeaseConfig.Validate). With LeaseMonths == 0 the
// result carries +Inf MonthlyAllowance and NaN ExpectedMileage/Variance, and
// IsOver is false.
func ComputeLeaseStats(cfg model.LeaseConfig, currentOdometer float64, ref time.Time) model.LeaseStats {
	start := cfg.StartDate
	end := AddMonths(start, cfg.LeaseMonths)
	months := float64(cfg.LeaseMonths)

	totalDays := DaysBetween(start, end)
	daysElapsed := DaysBetween(start, ref)
	pct := clamp(daysElapsed/totalDays*100, 0, 100)

	cycles := FullCycles(start, ref)
	if cycles > cfg.LeaseMonths {
		cycles = cfg.LeaseMonths
	}
	if cycles < 0 {
		cycles = 0
	}

	monthly := cfg.TotalMiles / months
	driven := math.Max(0, currentOdometer-cfg.StartOdometer)
	expected := monthly * float64(cycles)
	variance := driven - expected

	pace := math.Max(minProjectionMonths, float64(cycles))
	projected := driven / pace * months

	return model.LeaseStats{
		EndDate:            end,
		TotalDays:          totalDays,
		DaysElapsed:        daysElapsed,
		DaysRemaining:      totalDays - daysElapsed,
		PctTimeElapsed:     pct,
		TotalMonthsAllowed: cycles,
		CurrentOdo:         currentOdometer,
		ActualDriven:       driven,
		MonthlyAllowance:   monthly,
		DailyAllowance:     cfg.TotalMiles / totalDays,
		ExpectedMileage:    expected,
		Variance:           variance,
		IsOver:             variance > 0,
		ProjectedTotal:     projected,
		ProjectedVariance:  projected - cfg.TotalMiles,
	}
}

// clamp bounds v to [lo, hi]. NaN passes through unchanged.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
