package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/leaselad/leaselad/internal/cli"
	"github.com/leaselad/leaselad/internal/config"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/tui/components"
	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldToken = iota
	settingsFieldVIN
	settingsFieldStartDate
	settingsFieldMonths
	settingsFieldMiles
	settingsFieldStartOdo
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

var errDemoCredentials = errors.New("credentials are fixed in demo mode")

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message
	saveErr error // non-nil if the last edit was rejected or not saved
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := a.cfg
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()

	switch a.settings.cursor {
	case settingsFieldToken:
		ti.Placeholder = "Tessie API token"
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
		ti.SetValue(cfg.Tessie.APIToken)
	case settingsFieldVIN:
		ti.Placeholder = "empty = first vehicle"
		ti.SetValue(cfg.Tessie.VIN)
	case settingsFieldStartDate:
		ti.Placeholder = "YYYY-MM-DD"
		ti.SetValue(cfg.Lease.StartDate)
	case settingsFieldMonths:
		ti.Placeholder = "36"
		ti.SetValue(strconv.Itoa(cfg.Lease.LeaseMonths))
	case settingsFieldMiles:
		ti.Placeholder = "30000"
		ti.SetValue(formatFloat(cfg.Lease.TotalMiles))
	case settingsFieldStartOdo:
		ti.Placeholder = "0"
		ti.SetValue(formatFloat(cfg.Lease.StartOdometer))
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "300 (seconds, minimum 60)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		refetch := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		if refetch && a.settings.saveErr == nil {
			return a.startRefresh()
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited field and persists the config.
// It reports whether the vehicle must be fetched again.
func (a *App) settingsSave() bool {
	val := strings.TrimSpace(a.settings.input.Value())
	next := a.cfg
	refetch := false

	switch a.settings.cursor {
	case settingsFieldToken, settingsFieldVIN:
		if a.opts.Connect == nil {
			a.settings.saveErr = errDemoCredentials
			return false
		}
		if a.settings.cursor == settingsFieldToken {
			next.Tessie.APIToken = val
		} else {
			next.Tessie.VIN = val
		}
		refetch = true

	case settingsFieldStartDate, settingsFieldMonths, settingsFieldMiles, settingsFieldStartOdo:
		if err := setLeaseField(&next, a.settings.cursor, val); err != nil {
			a.settings.saveErr = err
			return false
		}
		terms, err := next.LeaseTerms()
		if err != nil {
			a.settings.saveErr = err
			return false
		}
		a.opts.Lease.Set(terms)
		a.recomputeLocal(terms)

	case settingsFieldTheme:
		if !slices.Contains(theme.Names(), val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return false
		}
		next.Appearance.Theme = val
		theme.SetActive(val)

	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = errors.New("enter true or false")
			return false
		}
		next.TUI.AutoRefresh = b
		a.autoRefresh = b

	case settingsFieldRefreshInterval:
		sec, err := strconv.Atoi(val)
		if err != nil || sec < 60 {
			a.settings.saveErr = errors.New("interval must be at least 60 seconds")
			return false
		}
		next.TUI.RefreshIntervalSec = sec
		a.refreshInterval = next.RefreshInterval()
	}

	a.cfg = next
	if refetch {
		if err := a.reconnect(); err != nil {
			a.settings.saveErr = err
			return false
		}
	}
	a.settings.saveErr = a.persist()
	return refetch
}

// setLeaseField parses val into the lease field at cursor.
func setLeaseField(cfg *config.Config, field int, val string) error {
	switch field {
	case settingsFieldStartDate:
		if _, err := config.ParseDate(val); err != nil {
			return err
		}
		cfg.Lease.StartDate = val
	case settingsFieldMonths:
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: lease months must be a whole number", model.ErrInvalidLease)
		}
		cfg.Lease.LeaseMonths = n
	case settingsFieldMiles:
		f, err := parseFloat(val)
		if err != nil {
			return fmt.Errorf("%w: total miles must be a number", model.ErrInvalidLease)
		}
		cfg.Lease.TotalMiles = f
	case settingsFieldStartOdo:
		f, err := parseFloat(val)
		if err != nil {
			return fmt.Errorf("%w: starting odometer must be a number", model.ErrInvalidLease)
		}
		cfg.Lease.StartOdometer = f
	}
	return nil
}

func maskToken(tok string) string {
	switch {
	case tok == "":
		return "(not set)"
	case len(tok) > 12:
		return tok[:4] + "..." + tok[len(tok)-4:]
	default:
		return "****"
	}
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	vin := cfg.Tessie.VIN
	if vin == "" {
		vin = "(first vehicle)"
	}

	fields := []struct{ label, value string }{
		{"API Token", maskToken(cfg.Tessie.APIToken)},
		{"VIN", vin},
		{"Lease Start", cfg.Lease.StartDate},
		{"Lease Months", strconv.Itoa(cfg.Lease.LeaseMonths)},
		{"Total Miles", cli.FormatMiles(cfg.Lease.TotalMiles)},
		{"Start Odometer", cli.FormatMiles(cfg.Lease.StartOdometer)},
		{"Theme", cfg.Appearance.Theme},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", a.refreshInterval.Round(time.Second).String()},
	}

	innerW := components.CardInnerWidth(cw)

	var form strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(accentStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")) +
				selectedStyle.Render(f.value)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				line += lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", pad))
			}
			form.WriteString(line)
		} else {
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Bad).Background(t.Surface).
			Render("Not saved: " + a.settings.saveErr.Error()))
	case a.settings.saved && a.opts.Save == nil:
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).
			Render("Applied for this session only."))
	case a.settings.saved:
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface).Render("Saved!"))
	}

	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var info strings.Builder
	info.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.Path()) + "\n")
	if a.result != nil && a.result.Vehicle != nil {
		info.WriteString(labelStyle.Render("Vehicle:      ") + valueStyle.Render(model.MaskedVIN(a.result.Vehicle.VIN)) + "\n")
	}
	info.WriteString(labelStyle.Render("Last refresh: ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())))

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("General", info.String(), cw)
}
