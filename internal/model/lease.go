// Package model defines lease, vehicle, and reading types.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidLease is returned when lease terms cannot be used for calculation.
var ErrInvalidLease = errors.New("invalid lease terms")

var validate = validator.New()

// LeaseConfig holds the contractual lease terms.
// StartDate is a calendar date at local midnight; time-of-day is ignored.
type LeaseConfig struct {
	StartDate     time.Time `validate:"required"`
	LeaseMonths   int       `validate:"gt=0"`
	TotalMiles    float64   `validate:"gt=0"`
	StartOdometer float64   `validate:"gte=0"`
}

// Validate rejects terms the calculator cannot divide by.
// Callers run this before ComputeLeaseStats; the calculator itself does not check.
func (c LeaseConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidLease, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidLease, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "StartDate":
		return "start date is required"
	case "LeaseMonths":
		return "lease months must be greater than 0"
	case "TotalMiles":
		return "total miles must be greater than 0"
	case "StartOdometer":
		return "starting odometer cannot be negative"
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// LeaseStats is the derived mileage picture for one reference date.
type LeaseStats struct {
	EndDate        time.Time
	TotalDays      float64
	DaysElapsed    float64 // negative before the lease starts
	DaysRemaining  float64
	PctTimeElapsed float64 // 0-100

	// TotalMonthsAllowed counts full monthly cycles, including the one
	// that opens on the start date. Steps up on each day-of-month anniversary.
	TotalMonthsAllowed int

	CurrentOdo   float64
	ActualDriven float64

	MonthlyAllowance float64
	DailyAllowance   float64 // informational
	ExpectedMileage  float64

	Variance float64 // negative = ahead of schedule
	IsOver   bool

	ProjectedTotal    float64
	ProjectedVariance float64
}

// HealthLabel returns the badge text shown next to the variance.
func (s LeaseStats) HealthLabel() string {
	if s.IsOver {
		return "BEHIND SCHEDULE"
	}
	return "AHEAD OF SCHEDULE"
}

// ProjectedOver reports whether the end-of-lease projection exceeds the allowance.
func (s LeaseStats) ProjectedOver() bool {
	return s.ProjectedVariance > 0
}
