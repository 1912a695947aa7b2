// Package daemon provides the long-running background lease monitor service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/pipeline"
)

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventOdometerDelta = "odometer_delta"
	EventCycleStarted  = "cycle_started"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Schedule     string // cron spec, e.g. "@every 5m"
	EventsBuffer int
}

// Snapshot is a compact lease state for status/event payloads.
type Snapshot struct {
	At                 time.Time `json:"at"`
	Vehicle            string    `json:"vehicle"`
	VIN                string    `json:"vin"`
	Source             string    `json:"source"`
	Stale              bool      `json:"stale"`
	Odometer           float64   `json:"odometer"`
	ActualDriven       float64   `json:"actual_driven"`
	MonthsAllowed      int       `json:"months_allowed"`
	ExpectedMileage    float64   `json:"expected_mileage"`
	Variance           float64   `json:"variance"`
	IsOver             bool      `json:"is_over"`
	PctTimeElapsed     float64   `json:"pct_time_elapsed"`
	DaysRemaining      float64   `json:"days_remaining"`
	ProjectedTotal     float64   `json:"projected_total"`
	ProjectedVariance  float64   `json:"projected_variance"`
	ProjectedOverLimit bool      `json:"projected_over_limit"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Odometer      float64 `json:"odometer"`
	Variance      float64 `json:"variance"`
	MonthsAllowed int     `json:"months_allowed"`
}

func (d Delta) isZero() bool {
	return d.Odometer == 0 &&
		d.Variance == 0 &&
		d.MonthsAllowed == 0
}

// Event is emitted whenever the lease snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	Schedule        string    `json:"schedule"`
	PollCount       int64     `json:"poll_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	syncer *pipeline.Syncer

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service polling through syncer.
func New(cfg Config, syncer *pipeline.Syncer) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	return &Service{
		cfg:       cfg,
		syncer:    syncer,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and scheduled polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	sched := cron.New()
	if _, err := sched.AddFunc(s.cfg.Schedule, func() { s.pollOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid daemon schedule %q: %w", s.cfg.Schedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		// Request contexts end with ctx so open streams unblock on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)
	sched.Start()
	log.Info().Str("addr", s.cfg.Addr).Str("schedule", s.cfg.Schedule).Msg("daemon started")

	select {
	case <-ctx.Done():
		<-sched.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		sched.Stop()
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	res, _, err := s.syncer.Refresh(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		log.Error().Err(err).Msg("daemon poll failed")
		return
	}
	s.apply(res)
}

// apply folds a load result into the service state and publishes an event
// when something changed.
func (s *Service) apply(res *pipeline.LoadResult) {
	snap := snapshotFromResult(res)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = snap.At
	s.pollCount++
	s.lastError = ""
	if res.FetchErr != nil {
		s.lastError = res.FetchErr.Error()
	}

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Timestamp: snap.At,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			typ := EventOdometerDelta
			if delta.MonthsAllowed > 0 {
				typ = EventCycleStarted
			}
			ev = Event{
				ID:        s.nextEventID,
				Type:      typ,
				Timestamp: snap.At,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		log.Debug().Str("type", ev.Type).Float64("odometer", snap.Odometer).Msg("lease event")
		s.publishEvent(ev)
	}
}

func snapshotFromResult(res *pipeline.LoadResult) Snapshot {
	st := res.Stats
	at := res.Ref
	if at.IsZero() {
		at = time.Now()
	}
	return Snapshot{
		At:                 at,
		Vehicle:            res.Vehicle.Name,
		VIN:                model.MaskedVIN(res.Vehicle.VIN),
		Source:             res.Vehicle.Source,
		Stale:              res.Stale,
		Odometer:           st.CurrentOdo,
		ActualDriven:       st.ActualDriven,
		MonthsAllowed:      st.TotalMonthsAllowed,
		ExpectedMileage:    st.ExpectedMileage,
		Variance:           st.Variance,
		IsOver:             st.IsOver,
		PctTimeElapsed:     st.PctTimeElapsed,
		DaysRemaining:      st.DaysRemaining,
		ProjectedTotal:     st.ProjectedTotal,
		ProjectedVariance:  st.ProjectedVariance,
		ProjectedOverLimit: st.ProjectedOver(),
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Odometer:      curr.Odometer - prev.Odometer,
		Variance:      curr.Variance - prev.Variance,
		MonthsAllowed: curr.MonthsAllowed - prev.MonthsAllowed,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		Schedule:        s.cfg.Schedule,
		PollCount:       s.pollCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
