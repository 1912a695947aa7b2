package pipeline

import (
	"sort"
	"time"

	"github.com/leaselad/leaselad/internal/model"
)

// AggregateCycles splits cached readings into lease month cycles up to and
// including the one containing ref. Driven miles per cycle are the odometer
// at the cycle's end minus the odometer at its start, where the odometer at
// a moment is the highest reading taken at or before it (StartOdometer when
// there is none). Cycles without readings show zero driven miles.
//
// Cycles are returned oldest first. The result is empty before the lease
// starts or when the lease is invalid.
func AggregateCycles(lease model.LeaseConfig, readings []model.Reading, ref time.Time) []model.CycleStats {
	if lease.LeaseMonths <= 0 {
		return nil
	}
	n := FullCycles(lease.StartDate, ref)
	if n > lease.LeaseMonths {
		n = lease.LeaseMonths
	}
	if n <= 0 {
		return nil
	}

	sorted := make([]model.Reading, len(readings))
	copy(sorted, readings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FetchedAt.Before(sorted[j].FetchedAt)
	})

	allowed := lease.TotalMiles / float64(lease.LeaseMonths)
	start := StartOfDay(lease.StartDate)

	cycles := make([]model.CycleStats, 0, n)
	for k := 0; k < n; k++ {
		cs := model.CycleStats{
			Index:   k + 1,
			Start:   AddMonths(start, k),
			End:     AddMonths(start, k+1),
			Allowed: allowed,
		}

		until := cs.End
		if !ref.Before(cs.Start) && ref.Before(cs.End) {
			cs.Current = true
			until = ref
		}

		open := odometerAt(sorted, cs.Start, lease.StartOdometer)
		closing := odometerAt(sorted, until, lease.StartOdometer)
		if closing > open {
			cs.Driven = closing - open
		}
		cs.Readings = countBetween(sorted, cs.Start, until, cs.Current)

		cycles = append(cycles, cs)
	}
	return cycles
}

// odometerAt returns the highest odometer among readings taken at or
// before t, or fallback when none qualify.
func odometerAt(sorted []model.Reading, t time.Time, fallback float64) float64 {
	best := fallback
	for _, r := range sorted {
		if r.FetchedAt.After(t) {
			break
		}
		if r.Odometer > best {
			best = r.Odometer
		}
	}
	return best
}

func countBetween(sorted []model.Reading, from, until time.Time, inclusive bool) int {
	n := 0
	for _, r := range sorted {
		if r.FetchedAt.Before(from) {
			continue
		}
		if r.FetchedAt.After(until) || (!inclusive && r.FetchedAt.Equal(until)) {
			break
		}
		n++
	}
	return n
}
