package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// legacyConfig is the JSON blob the browser app kept in local storage.
// Form inputs were saved as typed, so numbers may arrive as strings.
type legacyConfig struct {
	APIToken      string     `json:"apiToken"`
	VIN           string     `json:"vin"`
	StartDate     string     `json:"startDate"`
	LeaseMonths   flexNumber `json:"leaseMonths"`
	TotalMiles    flexNumber `json:"totalMiles"`
	StartOdometer flexNumber `json:"startOdometer"`
}

// flexNumber accepts 24, 24.0, "24" and "".
type flexNumber struct {
	v   float64
	set bool
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		f.v, f.set = v, true
		return nil
	}
	if err := json.Unmarshal(b, &f.v); err != nil {
		return err
	}
	f.set = true
	return nil
}

// ImportLegacyJSON merges settings exported from the browser app into cfg.
// Fields missing from the JSON keep their current values. The merged lease
// terms must validate.
func ImportLegacyJSON(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user on purpose
	if err != nil {
		return cfg, fmt.Errorf("reading legacy config: %w", err)
	}
	return mergeLegacy(data, cfg)
}

func mergeLegacy(data []byte, cfg Config) (Config, error) {
	var raw legacyConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parsing legacy config: %w", err)
	}

	out := cfg
	if tok := strings.TrimSpace(raw.APIToken); tok != "" {
		out.Tessie.APIToken = tok
	}
	if vin := strings.TrimSpace(raw.VIN); vin != "" {
		out.Tessie.VIN = vin
	}
	if sd := strings.TrimSpace(raw.StartDate); sd != "" {
		out.Lease.StartDate = sd
	}
	if raw.LeaseMonths.set {
		out.Lease.LeaseMonths = int(raw.LeaseMonths.v)
	}
	if raw.TotalMiles.set {
		out.Lease.TotalMiles = raw.TotalMiles.v
	}
	if raw.StartOdometer.set {
		out.Lease.StartOdometer = raw.StartOdometer.v
	}

	if _, err := out.LeaseTerms(); err != nil {
		return cfg, err
	}
	return out, nil
}

// ParseDate parses a YYYY-MM-DD date as local midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}
