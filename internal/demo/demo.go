// Package demo supplies a fixture vehicle and lease for trying the tool
// without an API token.
package demo

import (
	"context"
	"time"

	"github.com/leaselad/leaselad/internal/model"
)

// SourceName tags vehicles returned by the demo provider.
const SourceName = "demo"

// VIN is the placeholder VIN shown in demo mode.
const VIN = "5YJ...DEMO"

// Lease returns the demo lease terms: 24 months from 2025-07-01 with a
// 30,000 mile allowance.
func Lease() model.LeaseConfig {
	return model.LeaseConfig{
		StartDate:     time.Date(2025, time.July, 1, 0, 0, 0, 0, time.Local),
		LeaseMonths:   24,
		TotalMiles:    30000,
		StartOdometer: 0,
	}
}

// Provider returns the same fixture vehicle on every call.
type Provider struct {
	// Now stamps FetchedAt; defaults to time.Now.
	Now func() time.Time
}

// FetchVehicle returns the demo vehicle. It honors ctx cancellation but
// never fails otherwise.
func (p Provider) FetchVehicle(ctx context.Context) (*model.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	v := Vehicle()
	v.FetchedAt = now()
	return &v, nil
}

// Vehicle is the fixture: six months into the demo lease.
func Vehicle() model.Vehicle {
	return model.Vehicle{
		Name:          "Demo Tesla (6 Months In)",
		VIN:           VIN,
		Odometer:      5034,
		State:         "online",
		BatteryLevel:  ptr(78.0),
		ChargingState: "Disconnected",
		IdealRange:    ptr(215.0),
		Locked:        ptr(true),
		SentryMode:    ptr(true),
		Latitude:      ptr(40.7128),
		Longitude:     ptr(-74.0060),
		OutsideTemp:   ptr(18.0),
		InsideTemp:    ptr(22.0),
		Source:        SourceName,
	}
}

func ptr[T any](v T) *T { return &v }
