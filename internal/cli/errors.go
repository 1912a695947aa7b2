package cli

import (
	"context"
	"errors"

	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/pipeline"
	"github.com/leaselad/leaselad/internal/tessie"
)

// FriendlyError turns known failures into a one-line message for people.
// Unknown errors fall through to their own text.
func FriendlyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, tessie.ErrUnauthorized):
		return "Tessie rejected the API token. Update it with `leaselad setup`."
	case errors.Is(err, tessie.ErrRateLimited):
		return "Tessie rate limit reached. Try again in a minute."
	case errors.Is(err, tessie.ErrNoVehicles):
		return "No vehicles found on this Tessie account."
	case errors.Is(err, tessie.ErrVehicleState):
		return "Found the vehicle but could not read its state. It may be offline."
	case errors.Is(err, pipeline.ErrNoProvider):
		return "No Tessie API token configured. Run `leaselad setup` or use --demo."
	case errors.Is(err, model.ErrInvalidLease):
		return "Lease settings are invalid (" + err.Error() + "). Run `leaselad setup`."
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out waiting for Tessie."
	default:
		return err.Error()
	}
}
