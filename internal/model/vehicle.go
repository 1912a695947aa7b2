package model

import (
	"fmt"
	"math"
	"time"
)

// ChargingStateCharging is the charge state reported while plugged in and charging.
const ChargingStateCharging = "Charging"

// Vehicle is a normalized telemetry snapshot for one car.
// Optional readings are nil when the provider did not report them.
type Vehicle struct {
	Name     string
	VIN      string
	Odometer float64 // miles
	State    string  // online, asleep, ...

	// OdometerMissing is set when the provider reported no odometer and
	// Odometer is a zero placeholder.
	OdometerMissing bool

	BatteryLevel  *float64 // percent
	ChargingState string
	IdealRange    *float64 // miles

	Locked     *bool
	SentryMode *bool

	Latitude  *float64
	Longitude *float64

	OutsideTemp *float64 // Celsius
	InsideTemp  *float64 // Celsius

	Source    string // "tessie", "demo", "cache"
	FetchedAt time.Time

	// Notice is a non-fatal message from the provider, e.g. a VIN fallback.
	Notice string
}

// IsCharging reports whether the car is actively charging.
func (v Vehicle) IsCharging() bool {
	return v.ChargingState == ChargingStateCharging
}

// HasLocation reports whether both coordinates are present and non-zero.
func (v Vehicle) HasLocation() bool {
	return v.Latitude != nil && v.Longitude != nil && *v.Latitude != 0 && *v.Longitude != 0
}

// MapURL returns a maps link centered on the vehicle, or "" without a location.
func (v Vehicle) MapURL() string {
	if !v.HasLocation() {
		return ""
	}
	return fmt.Sprintf("https://maps.google.com/maps?q=%g,%g&hl=en&z=14", *v.Latitude, *v.Longitude)
}

// MaskedVIN shortens a VIN to its first 3 and last 4 characters.
func MaskedVIN(vin string) string {
	if vin == "" {
		return "N/A"
	}
	if len(vin) <= 7 {
		return vin
	}
	return vin[:3] + "..." + vin[len(vin)-4:]
}

// ToFahrenheit converts Celsius to whole degrees Fahrenheit.
// Returns nil when the input is nil.
func ToFahrenheit(celsius *float64) *int {
	if celsius == nil {
		return nil
	}
	f := int(math.Round(*celsius*9/5 + 32))
	return &f
}

// Reading is a cached odometer observation.
type Reading struct {
	ID        string
	VIN       string
	Odometer  float64
	Source    string
	FetchedAt time.Time
}
