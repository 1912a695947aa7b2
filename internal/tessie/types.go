package tessie

import "encoding/json"

// vehicleListResponse is the wrapped form of GET /vehicles.
type vehicleListResponse struct {
	Results []VehicleSummary `json:"results"`
}

// VehicleSummary is one entry from the vehicle list.
type VehicleSummary struct {
	VIN         string `json:"vin"`
	DisplayName string `json:"display_name"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// StateResponse is the raw GET /{vin}/state payload. Every section may be absent.
type StateResponse struct {
	State        string        `json:"state"`
	DisplayName  string        `json:"display_name"`
	VehicleState *VehicleState `json:"vehicle_state"`
	ChargeState  *ChargeState  `json:"charge_state"`
	ClimateState *ClimateState `json:"climate_state"`
	DriveState   *DriveState   `json:"drive_state"`
}

// VehicleState holds odometer and security fields.
type VehicleState struct {
	Odometer   *float64 `json:"odometer"`
	Locked     *bool    `json:"locked"`
	SentryMode *bool    `json:"sentry_mode"`
}

// ChargeState holds battery fields.
type ChargeState struct {
	BatteryLevel      *float64 `json:"battery_level"`
	ChargingState     string   `json:"charging_state"`
	IdealBatteryRange *float64 `json:"ideal_battery_range"`
}

// ClimateState holds temperatures in Celsius.
type ClimateState struct {
	OutsideTemp *float64 `json:"outside_temp"`
	InsideTemp  *float64 `json:"inside_temp"`
}

// DriveState holds the last known position.
type DriveState struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// parseVehicleList accepts both {"results": [...]} and a bare array.
func parseVehicleList(body []byte) ([]VehicleSummary, error) {
	var wrapped vehicleListResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Results != nil {
		return wrapped.Results, nil
	}

	var bare []VehicleSummary
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}
