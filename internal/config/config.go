// Package config loads and saves leaselad settings as TOML under the XDG
// config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/leaselad/leaselad/internal/model"
)

// Config holds all leaselad configuration.
type Config struct {
	Tessie     TessieConfig     `toml:"tessie"`
	Lease      LeaseConfig      `toml:"lease"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// TessieConfig holds API credentials and vehicle selection.
type TessieConfig struct {
	APIToken string `toml:"api_token,omitempty"`
	VIN      string `toml:"vin,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
}

// LeaseConfig holds the lease terms as written in the file.
type LeaseConfig struct {
	StartDate     string  `toml:"start_date"` // YYYY-MM-DD
	LeaseMonths   int     `toml:"lease_months"`
	TotalMiles    float64 `toml:"total_miles"`
	StartOdometer float64 `toml:"start_odometer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard behavior.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DaemonConfig holds background monitor settings.
type DaemonConfig struct {
	Addr     string `toml:"addr"`
	Schedule string `toml:"schedule"` // cron spec, e.g. "@every 5m"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Lease: LeaseConfig{
			StartDate:   "2025-07-01",
			LeaseMonths: 24,
			TotalMiles:  30000,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 300,
		},
		Daemon: DaemonConfig{
			Addr:     "127.0.0.1:8787",
			Schedule: "@every 5m",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "leaselad")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "leaselad")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk. The file holds the API token, so it is
// created owner-readable only.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// LoadDotEnv loads a .env file from the working directory if present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// GetAPIToken returns the Tessie token from env var or config, in that order.
func GetAPIToken(cfg Config) string {
	if tok := os.Getenv("TESSIE_API_TOKEN"); tok != "" {
		return tok
	}
	return cfg.Tessie.APIToken
}

// GetVIN returns the selected VIN from env var or config, in that order.
func GetVIN(cfg Config) string {
	if vin := os.Getenv("TESSIE_VIN"); vin != "" {
		return vin
	}
	return cfg.Tessie.VIN
}

// LeaseTerms parses and validates the lease section. The start date is
// interpreted as local midnight.
func (c Config) LeaseTerms() (model.LeaseConfig, error) {
	var terms model.LeaseConfig

	raw := strings.TrimSpace(c.Lease.StartDate)
	if raw == "" {
		return terms, fmt.Errorf("%w: start date is required", model.ErrInvalidLease)
	}
	start, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return terms, fmt.Errorf("%w: start date %q must be YYYY-MM-DD", model.ErrInvalidLease, raw)
	}

	terms = model.LeaseConfig{
		StartDate:     start,
		LeaseMonths:   c.Lease.LeaseMonths,
		TotalMiles:    c.Lease.TotalMiles,
		StartOdometer: c.Lease.StartOdometer,
	}
	if err := terms.Validate(); err != nil {
		return terms, err
	}
	return terms, nil
}

// SetLeaseTerms writes validated terms back into the lease section.
func (c *Config) SetLeaseTerms(terms model.LeaseConfig) error {
	if err := terms.Validate(); err != nil {
		return err
	}
	c.Lease = LeaseConfig{
		StartDate:     terms.StartDate.Format(time.DateOnly),
		LeaseMonths:   terms.LeaseMonths,
		TotalMiles:    terms.TotalMiles,
		StartOdometer: terms.StartOdometer,
	}
	return nil
}

// RefreshInterval returns the TUI auto-refresh period, at least one minute.
func (c Config) RefreshInterval() time.Duration {
	d := time.Duration(c.TUI.RefreshIntervalSec) * time.Second
	if d < time.Minute {
		return time.Minute
	}
	return d
}

// IsInvalidLease reports whether err came from lease validation.
func IsInvalidLease(err error) bool {
	return errors.Is(err, model.ErrInvalidLease)
}
