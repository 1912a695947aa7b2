package model

import "time"

// CycleStats holds driven miles for one lease month cycle.
type CycleStats struct {
	Index    int // 1-based cycle number
	Start    time.Time
	End      time.Time // exclusive
	Allowed  float64
	Driven   float64
	Readings int
	Current  bool // the cycle containing the reference time
}

// Over reports whether the cycle used more than its allowance.
func (c CycleStats) Over() bool {
	return c.Driven > c.Allowed
}
