package pipeline

import "time"

const dayDuration = 24 * time.Hour

// AddMonths adds n calendar months to t. Day-of-month overflow rolls into
// the next month (Jan 31 + 1 month = Mar 3 in a non-leap year), matching
// time.AddDate rather than clamping to the last day.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// DaysBetween returns the real-valued number of days from a to b.
// Daylight-saving transitions show up as fractional days.
func DaysBetween(a, b time.Time) float64 {
	return float64(b.Sub(a)) / float64(dayDuration)
}

// FullCycles counts the monthly anniversaries of start that fall on or
// before ref's calendar date. The start date itself is the first one,
// so FullCycles(start, start) == 1. Anniversaries use AddMonths, so the
// cycle count and the lease end date share one rollover rule.
// Returns 0 when ref is before start.
func FullCycles(start, ref time.Time) int {
	loc := start.Location()
	ref = ref.In(loc)
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	k := monthIndex(refDay) - monthIndex(startDay)
	for k >= 0 && AddMonths(startDay, k).After(refDay) {
		k--
	}
	return k + 1
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
