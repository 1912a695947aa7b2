package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leaselad/leaselad/internal/config"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues backs the first-run form. Numbers are kept as text so the
// inputs can validate what the user typed.
type SetupValues struct {
	Token         string
	VIN           string
	StartDate     string
	LeaseMonths   string
	TotalMiles    string
	StartOdometer string
	Theme         string
}

// NewSetupValues pre-fills the form from cfg. Environment overrides are
// not copied so they never end up in the config file.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		Token:         cfg.Tessie.APIToken,
		VIN:           cfg.Tessie.VIN,
		StartDate:     cfg.Lease.StartDate,
		LeaseMonths:   strconv.Itoa(cfg.Lease.LeaseMonths),
		TotalMiles:    formatFloat(cfg.Lease.TotalMiles),
		StartOdometer: formatFloat(cfg.Lease.StartOdometer),
		Theme:         cfg.Appearance.Theme,
	}
}

// NewSetupForm builds the setup wizard over v.
func NewSetupForm(v *SetupValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to leaselad").
				Description("Track your lease mileage against the allowance.\nYou'll need a Tessie API token (tessie.com → Settings → API)."),
			huh.NewInput().
				Title("Tessie API token").
				EchoMode(huh.EchoModePassword).
				Value(&v.Token).
				Validate(requireText("API token")),
			huh.NewInput().
				Title("VIN").
				Description("Leave empty to use the first vehicle on the account.").
				Value(&v.VIN),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Lease start date").
				Placeholder("YYYY-MM-DD").
				Value(&v.StartDate).
				Validate(validateDate),
			huh.NewInput().
				Title("Lease length (months)").
				Value(&v.LeaseMonths).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Total miles allowed").
				Value(&v.TotalMiles).
				Validate(validatePositive),
			huh.NewInput().
				Title("Odometer at lease start").
				Value(&v.StartOdometer).
				Validate(validateNonNegative),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&v.Theme),
		),
	).WithShowHelp(true)
}

// Apply writes the form values into cfg and returns the validated lease terms.
// cfg is left untouched on error.
func (v SetupValues) Apply(cfg *config.Config) (model.LeaseConfig, error) {
	next := *cfg
	next.Tessie.APIToken = strings.TrimSpace(v.Token)
	next.Tessie.VIN = strings.TrimSpace(v.VIN)
	next.Appearance.Theme = v.Theme

	months, err := strconv.Atoi(strings.TrimSpace(v.LeaseMonths))
	if err != nil {
		return model.LeaseConfig{}, fmt.Errorf("%w: lease months must be a whole number", model.ErrInvalidLease)
	}
	miles, err := parseFloat(v.TotalMiles)
	if err != nil {
		return model.LeaseConfig{}, fmt.Errorf("%w: total miles must be a number", model.ErrInvalidLease)
	}
	odo, err := parseFloat(v.StartOdometer)
	if err != nil {
		return model.LeaseConfig{}, fmt.Errorf("%w: starting odometer must be a number", model.ErrInvalidLease)
	}

	next.Lease = config.LeaseConfig{
		StartDate:     strings.TrimSpace(v.StartDate),
		LeaseMonths:   months,
		TotalMiles:    miles,
		StartOdometer: odo,
	}
	terms, err := next.LeaseTerms()
	if err != nil {
		return model.LeaseConfig{}, err
	}

	*cfg = next
	return terms, nil
}

func requireText(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validateDate(s string) error {
	_, err := config.ParseDate(s)
	return err
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number greater than 0")
	}
	return nil
}

func validatePositive(s string) error {
	f, err := parseFloat(s)
	if err != nil || f <= 0 {
		return errors.New("enter a number greater than 0")
	}
	return nil
}

func validateNonNegative(s string) error {
	f, err := parseFloat(s)
	if err != nil || f < 0 {
		return errors.New("enter 0 or a positive number")
	}
	return nil
}

// parseFloat accepts "30,000" as well as "30000".
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
