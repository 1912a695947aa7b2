package pipeline

import (
	"testing"
	"time"

	"github.com/leaselad/leaselad/internal/model"
)

func BenchmarkComputeLeaseStats(b *testing.B) {
	cfg := demoTerms()
	ref := date(2026, time.April, 17)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ComputeLeaseStats(cfg, 8123.4, ref)
	}
}

func BenchmarkAggregateCycles(b *testing.B) {
	cfg := demoTerms()
	ref := date(2027, time.June, 30)

	// Hourly readings across the whole lease, worst case for the daemon cache.
	var readings []model.Reading
	odo := 0.0
	for at := cfg.StartDate; at.Before(ref); at = at.Add(time.Hour) {
		odo += 1.7
		readings = append(readings, model.Reading{VIN: "V1", Odometer: odo, FetchedAt: at})
	}
	b.Logf("%d readings", len(readings))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregateCycles(cfg, readings, ref)
	}
}
