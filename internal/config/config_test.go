package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselad/leaselad/internal/model"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Tessie.APIToken = "secret"
	cfg.Tessie.VIN = "5YJ3E1EA7KF301234"
	cfg.Lease.StartOdometer = 12.5
	require.NoError(t, Save(cfg))
	require.True(t, Exists())

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "leaselad"), 0o755))
	require.NoError(t, os.WriteFile(Path(), []byte("[lease]\ntotal_miles = 36000\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 36000.0, cfg.Lease.TotalMiles)
	assert.Equal(t, 24, cfg.Lease.LeaseMonths)
	assert.Equal(t, "@every 5m", cfg.Daemon.Schedule)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "leaselad"), 0o755))
	require.NoError(t, os.WriteFile(Path(), []byte("[lease\n"), 0o600))

	_, err := Load()
	assert.ErrorContains(t, err, "parsing config")
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tessie.APIToken = "from-file"
	cfg.Tessie.VIN = "FILEVIN"

	t.Setenv("TESSIE_API_TOKEN", "")
	t.Setenv("TESSIE_VIN", "")
	assert.Equal(t, "from-file", GetAPIToken(cfg))
	assert.Equal(t, "FILEVIN", GetVIN(cfg))

	t.Setenv("TESSIE_API_TOKEN", "from-env")
	t.Setenv("TESSIE_VIN", "ENVVIN")
	assert.Equal(t, "from-env", GetAPIToken(cfg))
	assert.Equal(t, "ENVVIN", GetVIN(cfg))
}

func TestLeaseTerms(t *testing.T) {
	terms, err := DefaultConfig().LeaseTerms()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.Local), terms.StartDate)
	assert.Equal(t, 24, terms.LeaseMonths)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty date", func(c *Config) { c.Lease.StartDate = "" }},
		{"bad date", func(c *Config) { c.Lease.StartDate = "07/01/2025" }},
		{"zero months", func(c *Config) { c.Lease.LeaseMonths = 0 }},
		{"negative odometer", func(c *Config) { c.Lease.StartOdometer = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := cfg.LeaseTerms()
			require.ErrorIs(t, err, model.ErrInvalidLease)
			assert.True(t, IsInvalidLease(err))
		})
	}
}

func TestSetLeaseTerms(t *testing.T) {
	cfg := DefaultConfig()
	terms := model.LeaseConfig{
		StartDate:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.Local),
		LeaseMonths: 36,
		TotalMiles:  36000,
	}
	require.NoError(t, cfg.SetLeaseTerms(terms))
	assert.Equal(t, "2024-03-15", cfg.Lease.StartDate)

	terms.LeaseMonths = 0
	require.ErrorIs(t, cfg.SetLeaseTerms(terms), model.ErrInvalidLease)
	assert.Equal(t, 36, cfg.Lease.LeaseMonths)
}

func TestRefreshIntervalFloor(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval())

	cfg.TUI.RefreshIntervalSec = 5
	assert.Equal(t, time.Minute, cfg.RefreshInterval())
}

func TestMergeLegacy(t *testing.T) {
	data := []byte(`{
		"apiToken": "tok",
		"vin": "",
		"startDate": "2024-01-31",
		"leaseMonths": "36",
		"totalMiles": 45000,
		"startOdometer": "12"
	}`)

	cfg, err := mergeLegacy(data, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Tessie.APIToken)
	assert.Empty(t, cfg.Tessie.VIN)
	assert.Equal(t, "2024-01-31", cfg.Lease.StartDate)
	assert.Equal(t, 36, cfg.Lease.LeaseMonths)
	assert.Equal(t, 45000.0, cfg.Lease.TotalMiles)
	assert.Equal(t, 12.0, cfg.Lease.StartOdometer)
}

func TestMergeLegacyRejectsInvalidTerms(t *testing.T) {
	orig := DefaultConfig()

	got, err := mergeLegacy([]byte(`{"leaseMonths": 0}`), orig)
	require.ErrorIs(t, err, model.ErrInvalidLease)
	assert.Equal(t, orig, got)

	_, err = mergeLegacy([]byte(`{"totalMiles": "lots"}`), orig)
	assert.ErrorContains(t, err, "parsing legacy config")
}

func TestImportLegacyJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaselad_config_v1.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"vin":"ABC1234567","totalMiles":"30000"}`), 0o600))

	cfg, err := ImportLegacyJSON(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "ABC1234567", cfg.Tessie.VIN)

	_, err = ImportLegacyJSON(filepath.Join(t.TempDir(), "missing.json"), DefaultConfig())
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2026-01-01 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.Local), d)

	_, err = ParseDate("tomorrow")
	assert.Error(t, err)
}
