package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leaselad/leaselad/internal/model"
)

// SourceCache tags vehicles rebuilt from a cached reading.
const SourceCache = "cache"

// ErrNoProvider is returned when no vehicle data source is configured,
// typically because the API token is missing.
var ErrNoProvider = errors.New("no vehicle data source configured")

// Provider supplies the current vehicle snapshot.
type Provider interface {
	FetchVehicle(ctx context.Context) (*model.Vehicle, error)
}

// ReadingStore persists odometer readings between runs.
// LatestReading returns nil, nil when nothing is cached for vin.
type ReadingStore interface {
	SaveReading(r model.Reading) error
	LatestReading(vin string) (*model.Reading, error)
}

// LoadResult holds the output of one fetch-and-compute pass.
type LoadResult struct {
	Vehicle *model.Vehicle
	Lease   model.LeaseConfig
	Stats   model.LeaseStats
	Ref     time.Time

	// Stale is set when the provider failed and Vehicle came from the cache.
	// FetchErr then holds the provider error.
	Stale    bool
	FetchErr error
}

// Load validates the lease, fetches the vehicle, records the reading, and
// computes stats at ref. When the fetch fails and the store holds a reading
// for vin, stats are computed from it and the result is flagged stale.
// An empty vin has no cached fallback. Vehicles without an odometer are
// not recorded. store may be nil.
func Load(ctx context.Context, p Provider, store ReadingStore, lease model.LeaseConfig, vin string, ref time.Time) (*LoadResult, error) {
	if err := lease.Validate(); err != nil {
		return nil, err
	}

	if p == nil {
		return nil, ErrNoProvider
	}

	result := &LoadResult{Lease: lease, Ref: ref}

	v, err := p.FetchVehicle(ctx)
	switch {
	case err == nil:
		result.Vehicle = v
		if store != nil && !v.OdometerMissing {
			saveReading(store, v)
		}
	case store == nil || vin == "" || errors.Is(err, context.Canceled):
		return nil, err
	default:
		cached, cacheErr := store.LatestReading(vin)
		if cacheErr != nil || cached == nil {
			if cacheErr != nil {
				log.Warn().Err(cacheErr).Msg("reading cache lookup failed")
			}
			return nil, err
		}
		log.Warn().Err(err).Time("cached_at", cached.FetchedAt).Msg("fetch failed, using cached reading")
		result.Vehicle = vehicleFromReading(cached)
		result.Stale = true
		result.FetchErr = err
	}

	result.Stats = ComputeLeaseStats(lease, result.Vehicle.Odometer, ref)
	return result, nil
}

func saveReading(store ReadingStore, v *model.Vehicle) {
	at := v.FetchedAt
	if at.IsZero() {
		at = time.Now()
	}
	r := model.Reading{
		VIN:       v.VIN,
		Odometer:  v.Odometer,
		Source:    v.Source,
		FetchedAt: at,
	}
	if err := store.SaveReading(r); err != nil {
		log.Warn().Err(err).Str("vin", v.VIN).Msg("saving reading")
	}
}

func vehicleFromReading(r *model.Reading) *model.Vehicle {
	return &model.Vehicle{
		Name:      "Last known reading",
		VIN:       r.VIN,
		Odometer:  r.Odometer,
		Source:    SourceCache,
		FetchedAt: r.FetchedAt,
		Notice:    fmt.Sprintf("Showing cached odometer from %s.", r.FetchedAt.Local().Format("Jan 2 15:04")),
	}
}
