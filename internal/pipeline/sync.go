package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/leaselad/leaselad/internal/model"
)

// LeaseRef holds lease terms that may be edited while a Syncer is running.
type LeaseRef struct {
	mu    sync.RWMutex
	terms model.LeaseConfig
}

// NewLeaseRef returns a holder initialized to terms.
func NewLeaseRef(terms model.LeaseConfig) *LeaseRef {
	return &LeaseRef{terms: terms}
}

// Get returns the current terms.
func (r *LeaseRef) Get() model.LeaseConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.terms
}

// Set replaces the terms.
func (r *LeaseRef) Set(terms model.LeaseConfig) {
	r.mu.Lock()
	r.terms = terms
	r.mu.Unlock()
}

// Syncer runs Load with fixed inputs and collapses concurrent refreshes
// into a single provider call. The last successful result is retained.
// With no VIN configured, the VIN of the last live fetch scopes the cached
// fallback.
type Syncer struct {
	Provider Provider
	Store    ReadingStore
	VIN      string

	// Lease returns the current terms; read on every refresh so edits apply.
	Lease func() model.LeaseConfig
	// Now returns the reference time; defaults to time.Now.
	Now func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	last        *LoadResult
	resolvedVIN string
}

// Reconfigure swaps the provider and VIN used by later refreshes,
// e.g. after the API token changes.
func (s *Syncer) Reconfigure(p Provider, vin string) {
	s.mu.Lock()
	s.Provider = p
	s.VIN = vin
	s.resolvedVIN = ""
	s.mu.Unlock()
}

// Refresh loads fresh data. Callers that arrive while a refresh is in
// flight share its result. shared is true for every caller of a collapsed
// call, the one that started it included, so it cannot be used to pick a
// single consumer of the result.
func (s *Syncer) Refresh(ctx context.Context) (res *LoadResult, shared bool, err error) {
	v, err, shared := s.group.Do("refresh", func() (any, error) {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}

		s.mu.RLock()
		provider, vin := s.Provider, s.VIN
		if vin == "" {
			vin = s.resolvedVIN
		}
		s.mu.RUnlock()

		r, err := Load(ctx, provider, s.Store, s.Lease(), vin, now())
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.last = r
		if !r.Stale && s.VIN == "" {
			s.resolvedVIN = r.Vehicle.VIN
		}
		s.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, shared, err
	}
	return v.(*LoadResult), shared, nil
}

// Last returns the most recent successful result, or nil.
func (s *Syncer) Last() *LoadResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
