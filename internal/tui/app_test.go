package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselad/leaselad/internal/config"
	"github.com/leaselad/leaselad/internal/demo"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/pipeline"
	"github.com/leaselad/leaselad/internal/tessie"
	"github.com/leaselad/leaselad/internal/tui/components"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

var refDate = time.Date(2025, time.December, 31, 12, 0, 0, 0, time.Local)

type failingProvider struct{ err error }

func (f failingProvider) FetchVehicle(context.Context) (*model.Vehicle, error) {
	return nil, f.err
}

type readingsFake []model.Reading

func (r readingsFake) Readings(string, int) ([]model.Reading, error) { return r, nil }

func demoOptions(t *testing.T) (Options, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	ref := pipeline.NewLeaseRef(demo.Lease())
	saved := &config.Config{}
	return Options{
		Config: cfg,
		Syncer: &pipeline.Syncer{
			Provider: demo.Provider{Now: func() time.Time { return refDate }},
			VIN:      demo.VIN,
			Lease:    ref.Get,
			Now:      func() time.Time { return refDate },
		},
		Lease: ref,
		History: readingsFake{
			{VIN: demo.VIN, Odometer: 900, FetchedAt: time.Date(2025, time.July, 31, 20, 0, 0, 0, time.Local)},
			{VIN: demo.VIN, Odometer: 5034, FetchedAt: refDate},
		},
		Save: func(c config.Config) error {
			*saved = c
			return nil
		},
		Demo: true,
	}, saved
}

// loaded runs the initial load synchronously and sizes the window.
func loaded(t *testing.T, opts Options) App {
	t.Helper()
	a := NewApp(opts)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	msg := loadDataCmd(opts.Syncer, opts.History)()
	m, _ = m.(App).Update(msg)
	return m.(App)
}

func press(t *testing.T, a App, keys ...tea.KeyMsg) App {
	t.Helper()
	var m tea.Model = a
	for _, k := range keys {
		m, _ = m.(App).Update(k)
	}
	return m.(App)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestDashboardShowsHealth(t *testing.T) {
	opts, _ := demoOptions(t)
	a := loaded(t, opts)

	require.True(t, a.loaded)
	require.NoError(t, a.loadErr)
	require.NotNil(t, a.result)
	assert.Equal(t, 6, a.result.Stats.TotalMonthsAllowed)

	view := ansi.Strip(a.View())
	assert.Contains(t, view, "AHEAD OF SCHEDULE")
	assert.Contains(t, view, "2,466 mi buffer")
	assert.Contains(t, view, "Today")
}

func TestTabKeysAndHelp(t *testing.T) {
	opts, _ := demoOptions(t)
	a := loaded(t, opts)

	a = press(t, a, runes("v"))
	assert.Equal(t, components.TabVehicle, a.activeTab)
	assert.Contains(t, ansi.Strip(a.View()), "maps.google.com")

	a = press(t, a, runes("h"))
	assert.Equal(t, components.TabHistory, a.activeTab)
	assert.Contains(t, ansi.Strip(a.View()), "Monthly Mileage")

	a = press(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, components.TabSettings, a.activeTab)
	a = press(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, components.TabDashboard, a.activeTab)

	a = press(t, a, runes("?"))
	assert.True(t, a.showHelp)
	a = press(t, a, runes("z"))
	assert.False(t, a.showHelp)
}

func TestHistoryCyclesFromReadings(t *testing.T) {
	opts, _ := demoOptions(t)
	a := loaded(t, opts)

	require.Len(t, a.cycles, 6)
	assert.Equal(t, 900.0, a.cycles[0].Driven)
	assert.True(t, a.cycles[5].Current)
}

func TestSettingsLeaseEditRecomputesAndSaves(t *testing.T) {
	opts, saved := demoOptions(t)
	a := loaded(t, opts)
	a = press(t, a, runes("x"))

	a.settings.cursor = settingsFieldStartOdo
	a = press(t, a, enter)
	require.True(t, a.settings.editing)

	a.settings.input.SetValue("34")
	a = press(t, a, enter)

	require.NoError(t, a.settings.saveErr)
	assert.True(t, a.settings.saved)
	assert.Equal(t, 5000.0, a.result.Stats.ActualDriven)
	assert.Equal(t, 34.0, opts.Lease.Get().StartOdometer)
	assert.Equal(t, 34.0, saved.Lease.StartOdometer)
}

func TestSettingsRejectsInvalidLease(t *testing.T) {
	opts, saved := demoOptions(t)
	a := loaded(t, opts)
	a = press(t, a, runes("x"))

	a.settings.cursor = settingsFieldMonths
	a = press(t, a, enter)
	a.settings.input.SetValue("0")
	a = press(t, a, enter)

	require.ErrorIs(t, a.settings.saveErr, model.ErrInvalidLease)
	assert.Equal(t, 24, opts.Lease.Get().LeaseMonths)
	assert.Zero(t, saved.Lease.LeaseMonths)
	assert.Contains(t, ansi.Strip(a.View()), "Not saved")
}

func TestSettingsCredentialsLockedWithoutConnect(t *testing.T) {
	opts, _ := demoOptions(t)
	a := loaded(t, opts)
	a = press(t, a, runes("x"))

	a.settings.cursor = settingsFieldToken
	a = press(t, a, enter)
	a.settings.input.SetValue("new-token")
	a = press(t, a, enter)

	assert.ErrorIs(t, a.settings.saveErr, errDemoCredentials)
}

func TestLoadErrorIsFriendly(t *testing.T) {
	opts, _ := demoOptions(t)
	opts.Syncer.Provider = failingProvider{err: tessie.ErrUnauthorized}
	opts.History = nil
	a := loaded(t, opts)

	require.ErrorIs(t, a.loadErr, tessie.ErrUnauthorized)
	view := ansi.Strip(a.View())
	assert.Contains(t, view, "Unable to load vehicle")
	assert.Contains(t, view, "rejected the API token")
}

func TestRefreshErrorKeepsLastResult(t *testing.T) {
	opts, _ := demoOptions(t)
	a := loaded(t, opts)
	first := a.result

	m, _ := a.Update(DataLoadedMsg{Err: errors.New("boom")})
	a = m.(App)
	assert.Same(t, first, a.result)
	assert.Equal(t, "boom", a.statusInfo().Message)
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := NewSetupValues(cfg)
	v.Token = " tok "
	v.TotalMiles = "36,000"
	v.LeaseMonths = "36"

	terms, err := v.Apply(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Tessie.APIToken)
	assert.Equal(t, 36000.0, terms.TotalMiles)
	assert.Equal(t, 36, cfg.Lease.LeaseMonths)

	bad := *v
	bad.StartDate = "07/01/2025"
	before := cfg
	_, err = bad.Apply(&cfg)
	require.ErrorIs(t, err, model.ErrInvalidLease)
	assert.Equal(t, before, cfg)
}
