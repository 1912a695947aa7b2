package pipeline

import (
	"testing"
	"time"
)

func TestAddMonthsRollsOver(t *testing.T) {
	tests := []struct {
		start time.Time
		n     int
		want  time.Time
	}{
		{date(2025, time.January, 31), 1, date(2025, time.March, 3)},
		{date(2024, time.January, 31), 1, date(2024, time.March, 2)}, // leap year
		{date(2025, time.January, 31), 2, date(2025, time.March, 31)},
		{date(2025, time.July, 1), 24, date(2027, time.July, 1)},
		{date(2025, time.August, 31), 1, date(2025, time.October, 1)},
	}

	for _, tt := range tests {
		if got := AddMonths(tt.start, tt.n); !got.Equal(tt.want) {
			t.Errorf("AddMonths(%s, %d) = %s, want %s",
				tt.start.Format(time.DateOnly), tt.n, got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
		}
	}
}

func TestFullCycles(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		ref   time.Time
		want  int
	}{
		{"day zero", date(2025, time.July, 1), date(2025, time.July, 1), 1},
		{"day before start", date(2025, time.July, 1), date(2025, time.June, 30), 0},
		{"month before start", date(2025, time.July, 15), date(2025, time.June, 20), 0},
		{"mid first month", date(2025, time.July, 1), date(2025, time.July, 20), 1},
		{"before anniversary", date(2025, time.July, 15), date(2025, time.August, 14), 1},
		{"on anniversary", date(2025, time.July, 15), date(2025, time.August, 15), 2},
		{"year boundary", date(2025, time.July, 1), date(2026, time.January, 1), 7},
		{"31st into short month", date(2025, time.January, 31), date(2025, time.February, 28), 1},
		{"31st before rolled anniversary", date(2025, time.January, 31), date(2025, time.March, 2), 1},
		{"31st on rolled anniversary", date(2025, time.January, 31), date(2025, time.March, 3), 2},
		{"31st on next anniversary", date(2025, time.January, 31), date(2025, time.March, 31), 3},
		{"30th through february", date(2025, time.January, 30), date(2025, time.March, 2), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FullCycles(tt.start, tt.ref); got != tt.want {
				t.Errorf("FullCycles(%s, %s) = %d, want %d",
					tt.start.Format(time.DateOnly), tt.ref.Format(time.DateOnly), got, tt.want)
			}
		})
	}
}

func TestFullCyclesIgnoresTimeOfDay(t *testing.T) {
	start := date(2025, time.July, 1)
	late := date(2025, time.August, 1).Add(23*time.Hour + 59*time.Minute)
	if got := FullCycles(start, late); got != 2 {
		t.Fatalf("FullCycles late on anniversary = %d, want 2", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := date(2025, time.July, 1)
	if got := DaysBetween(a, a.Add(36*time.Hour)); got != 1.5 {
		t.Fatalf("DaysBetween 36h = %v, want 1.5", got)
	}
	if got := DaysBetween(a, a.AddDate(0, 0, -3)); got != -3 {
		t.Fatalf("DaysBetween backwards = %v, want -3", got)
	}
}
