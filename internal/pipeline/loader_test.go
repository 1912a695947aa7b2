package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaselad/leaselad/internal/model"
)

type fakeProvider struct {
	vehicle *model.Vehicle
	err     error
	calls   atomic.Int32
	gate    chan struct{}
}

func (f *fakeProvider) FetchVehicle(ctx context.Context) (*model.Vehicle, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	v := *f.vehicle
	return &v, nil
}

type memStore struct {
	mu       sync.Mutex
	readings []model.Reading
	saveErr  error
}

func (m *memStore) SaveReading(r model.Reading) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings = append(m.readings, r)
	return nil
}

// LatestReading matches any reading for an empty vin, so Load has to do
// its own scoping.
func (m *memStore) LatestReading(vin string) (*model.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.readings) - 1; i >= 0; i-- {
		if vin == "" || m.readings[i].VIN == vin {
			r := m.readings[i]
			return &r, nil
		}
	}
	return nil, nil
}

var errOffline = errors.New("offline")

func TestLoadComputesAndRecords(t *testing.T) {
	p := &fakeProvider{vehicle: &model.Vehicle{VIN: "V1", Odometer: 5034, Source: "test"}}
	st := &memStore{}
	ref := date(2025, time.December, 31)

	res, err := Load(context.Background(), p, st, demoTerms(), "V1", ref)
	require.NoError(t, err)

	assert.False(t, res.Stale)
	assert.NoError(t, res.FetchErr)
	assert.Equal(t, -2466.0, res.Stats.Variance)
	assert.Equal(t, ref, res.Ref)
	require.Len(t, st.readings, 1)
	assert.Equal(t, 5034.0, st.readings[0].Odometer)
	assert.Equal(t, "test", st.readings[0].Source)
	assert.False(t, st.readings[0].FetchedAt.IsZero())
}

func TestLoadRejectsInvalidLease(t *testing.T) {
	p := &fakeProvider{vehicle: &model.Vehicle{}}
	cfg := demoTerms()
	cfg.TotalMiles = 0

	_, err := Load(context.Background(), p, nil, cfg, "", date(2025, time.December, 31))
	require.ErrorIs(t, err, model.ErrInvalidLease)
	assert.Zero(t, p.calls.Load())
}

func TestLoadFallsBackToCache(t *testing.T) {
	cachedAt := date(2025, time.December, 30)
	st := &memStore{readings: []model.Reading{{VIN: "V1", Odometer: 4000, FetchedAt: cachedAt}}}
	p := &fakeProvider{err: errOffline}

	res, err := Load(context.Background(), p, st, demoTerms(), "V1", date(2025, time.December, 31))
	require.NoError(t, err)

	assert.True(t, res.Stale)
	assert.ErrorIs(t, res.FetchErr, errOffline)
	assert.Equal(t, SourceCache, res.Vehicle.Source)
	assert.Equal(t, 4000.0, res.Stats.ActualDriven)
	assert.NotEmpty(t, res.Vehicle.Notice)
}

func TestLoadNoCacheSurfacesError(t *testing.T) {
	p := &fakeProvider{err: errOffline}

	_, err := Load(context.Background(), p, &memStore{}, demoTerms(), "V1", date(2025, time.December, 31))
	assert.ErrorIs(t, err, errOffline)

	_, err = Load(context.Background(), p, nil, demoTerms(), "V1", date(2025, time.December, 31))
	assert.ErrorIs(t, err, errOffline)
}

func TestLoadSaveFailureIsNotFatal(t *testing.T) {
	p := &fakeProvider{vehicle: &model.Vehicle{VIN: "V1", Odometer: 100}}
	st := &memStore{saveErr: errors.New("disk full")}

	res, err := Load(context.Background(), p, st, demoTerms(), "V1", date(2025, time.December, 31))
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Stats.ActualDriven)
}

func TestSyncerCollapsesConcurrentRefreshes(t *testing.T) {
	p := &fakeProvider{
		vehicle: &model.Vehicle{VIN: "V1", Odometer: 5034},
		gate:    make(chan struct{}),
	}
	s := &Syncer{
		Provider: p,
		Lease:    demoTerms,
		Now:      func() time.Time { return date(2025, time.December, 31) },
	}

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*LoadResult, callers)
	errs := make([]error, callers)
	started := make(chan struct{}, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			results[i], _, errs[i] = s.Refresh(context.Background())
		}(i)
	}
	for i := 0; i < callers; i++ {
		<-started
	}
	// Let the goroutines reach singleflight before releasing the fetch.
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(p.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, int32(1), p.calls.Load())
	assert.Same(t, results[0], s.Last())
}

func TestSyncerKeepsLastOnError(t *testing.T) {
	p := &fakeProvider{vehicle: &model.Vehicle{VIN: "V1", Odometer: 10}}
	s := &Syncer{Provider: p, Lease: demoTerms}

	first, _, err := s.Refresh(context.Background())
	require.NoError(t, err)

	p.err = errOffline
	_, _, err = s.Refresh(context.Background())
	require.ErrorIs(t, err, errOffline)
	assert.Same(t, first, s.Last())
}

func TestSyncerPicksUpLeaseEditsAndReconfigure(t *testing.T) {
	ref := NewLeaseRef(demoTerms())
	s := &Syncer{
		Provider: &fakeProvider{vehicle: &model.Vehicle{VIN: "V1", Odometer: 1000}},
		VIN:      "V1",
		Lease:    ref.Get,
		Now:      func() time.Time { return date(2025, time.December, 31) },
	}

	res, _, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.Stats.ActualDriven)

	edited := demoTerms()
	edited.StartOdometer = 400
	ref.Set(edited)
	s.Reconfigure(&fakeProvider{vehicle: &model.Vehicle{VIN: "V2", Odometer: 1500}}, "V2")

	res, _, err = s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "V2", res.Vehicle.VIN)
	assert.Equal(t, 1100.0, res.Stats.ActualDriven)
	assert.Equal(t, 400.0, res.Lease.StartOdometer)
}

func TestLoadWithoutProvider(t *testing.T) {
	_, err := Load(context.Background(), nil, &memStore{}, demoTerms(), "V1", date(2025, time.December, 31))
	require.ErrorIs(t, err, ErrNoProvider)
}

func TestLoadFallbackIsScopedToVehicle(t *testing.T) {
	st := &memStore{}
	ref := date(2025, time.December, 31)
	terms := demoTerms()
	terms.StartOdometer = 20000

	_, err := Load(context.Background(), &fakeProvider{vehicle: &model.Vehicle{VIN: "5YJREAL000", Odometer: 41000, FetchedAt: ref.Add(-2 * time.Hour)}}, st, terms, "5YJREAL000", ref)
	require.NoError(t, err)
	_, err = Load(context.Background(), &fakeProvider{vehicle: &model.Vehicle{VIN: "5YJ...DEMO", Odometer: 5034, FetchedAt: ref.Add(-time.Hour)}}, st, demoTerms(), "", ref)
	require.NoError(t, err)

	failing := &fakeProvider{err: errOffline}

	_, err = Load(context.Background(), failing, st, terms, "", ref)
	require.ErrorIs(t, err, errOffline)

	res, err := Load(context.Background(), failing, st, terms, "5YJREAL000", ref)
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, "5YJREAL000", res.Vehicle.VIN)
	assert.Equal(t, 21000.0, res.Stats.ActualDriven)
}

func TestLoadSkipsReadingWithoutOdometer(t *testing.T) {
	st := &memStore{}
	p := &fakeProvider{vehicle: &model.Vehicle{VIN: "V1", OdometerMissing: true}}

	res, err := Load(context.Background(), p, st, demoTerms(), "V1", date(2025, time.December, 31))
	require.NoError(t, err)
	assert.Zero(t, res.Stats.ActualDriven)
	assert.Empty(t, st.readings)
}

func TestSyncerFallsBackToResolvedVehicle(t *testing.T) {
	ref := date(2025, time.December, 31)
	st := &memStore{}
	p := &fakeProvider{vehicle: &model.Vehicle{VIN: "5YJREAL000", Odometer: 41000, FetchedAt: ref.Add(-time.Hour)}}
	s := &Syncer{
		Provider: p,
		Store:    st,
		Lease:    demoTerms,
		Now:      func() time.Time { return ref },
	}

	_, _, err := s.Refresh(context.Background())
	require.NoError(t, err)

	// A reading from another vehicle lands in the same store afterwards.
	require.NoError(t, st.SaveReading(model.Reading{VIN: "5YJ...DEMO", Odometer: 5034, FetchedAt: ref.Add(-time.Minute)}))

	p.err = errOffline
	res, _, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, "5YJREAL000", res.Vehicle.VIN)
	assert.Equal(t, 41000.0, res.Stats.CurrentOdo)

	s.Reconfigure(p, "")
	_, _, err = s.Refresh(context.Background())
	require.ErrorIs(t, err, errOffline)
}
