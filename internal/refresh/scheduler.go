package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/five82/skytrack/internal/flight"
	"github.com/five82/skytrack/internal/logger"
	"github.com/five82/skytrack/internal/metrics"
	"github.com/five82/skytrack/internal/opensky"
)

const defaultInterval = 5 * time.Second

// State is the scheduler's lifecycle state.
type State int

const (
	Idle State = iota
	Watching
	Suspended
)

func (s State) String() string {
	switch s {
	case Watching:
		return "watching"
	case Suspended:
		return "suspended"
	default:
		return "idle"
	}
}

// ResumePolicy decides what Resume does besides re-enabling ticks.
type ResumePolicy int

const (
	// ResumeNextTick waits for the next tick.
	ResumeNextTick ResumePolicy = iota
	// ResumeImmediate fetches as soon as the scheduler resumes.
	ResumeImmediate
)

// Store receives fetch lifecycle events. *state.Store implements it.
type Store interface {
	BeginFetch()
	EndFetch()
	ClearLoading()
	OnFetchSucceeded(flight.Snapshot)
	OnFetchFailed(error) bool
	SetSelectedCountry(string)
}

// Options configures a Scheduler.
type Options struct {
	Fetcher  opensky.Fetcher
	Store    Store
	Interval time.Duration

	ResumePolicy           ResumePolicy
	SuspendOnError         bool
	RefetchOnCountryChange bool

	NewTicker func(time.Duration) Ticker // nil uses time.NewTicker
	Logger    *logger.Logger
	Metrics   *metrics.Collector
}

// Scheduler polls the fetcher for one region at a time.
//
// Every fetch is tagged with the watch generation it belongs to and a
// sequence number. A result is applied only while its generation is current
// and its sequence is newer than anything applied before, so a slow response
// for an old region or an overtaken poll never overwrites fresher data.
type Scheduler struct {
	fetcher   opensky.Fetcher
	store     Store
	interval  time.Duration
	policy    ResumePolicy
	suspendOn bool
	refetchOn bool
	newTicker func(time.Duration) Ticker
	log       *logger.Logger
	metrics   *metrics.Collector

	base     context.Context
	shutdown context.CancelFunc
	inflight sync.WaitGroup

	mu         sync.Mutex
	state      State
	region     flight.Region
	generation uint64
	issued     uint64
	applied    uint64
	open       int
	stopTicks  chan struct{}
	genCtx     context.Context
	genCancel  context.CancelFunc
	closed     bool
}

// New builds an idle Scheduler.
func New(opts Options) *Scheduler {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	newTicker := opts.NewTicker
	if newTicker == nil {
		newTicker = NewTicker
	}
	base, shutdown := context.WithCancel(context.Background())
	return &Scheduler{
		fetcher:   opts.Fetcher,
		store:     opts.Store,
		interval:  interval,
		policy:    opts.ResumePolicy,
		suspendOn: opts.SuspendOnError,
		refetchOn: opts.RefetchOnCountryChange,
		newTicker: newTicker,
		log:       opts.Logger.Named("refresh"),
		metrics:   opts.Metrics,
		base:      base,
		shutdown:  shutdown,
	}
}

// State returns the lifecycle state and the watched region (zero when idle).
func (s *Scheduler) State() (State, flight.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.region
}

// Interval returns the polling period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// StartWatching makes region the watched region, fetches it immediately and
// then on every tick. Any previous watch is cancelled first, including one
// for the same region.
func (s *Scheduler) StartWatching(region flight.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.resetLocked()
	s.state = Watching
	s.region = region

	s.genCtx, s.genCancel = context.WithCancel(s.base)
	stop := make(chan struct{})
	s.stopTicks = stop
	ticker := s.newTicker(s.interval)
	go s.tickLoop(s.generation, ticker, stop)

	s.log.Info("watching region",
		logger.Stringer("region", region),
		logger.Duration("interval", s.interval),
		logger.Uint64("generation", s.generation),
	)
	s.issueLocked()
}

// StopWatching cancels the watch and clears the loading flag.
func (s *Scheduler) StopWatching() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return
	}
	s.resetLocked()
	s.state = Idle
	s.region = flight.Region{}
	s.log.Info("stopped watching")
}

// Suspend drops ticks until Resume. Fetches already in flight still apply.
func (s *Scheduler) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Watching {
		return
	}
	s.state = Suspended
	s.log.Debug("suspended")
}

// Resume re-enables ticks, fetching right away under ResumeImmediate.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Suspended {
		return
	}
	s.state = Watching
	s.log.Debug("resumed")
	if s.policy == ResumeImmediate {
		s.issueLocked()
	}
}

// Refresh fetches the watched region now without touching the timer. It is a
// no-op unless watching.
func (s *Scheduler) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Watching {
		return
	}
	s.issueLocked()
}

// SetSelectedCountry forwards the filter to the store and, when configured,
// refetches the watched region.
func (s *Scheduler) SetSelectedCountry(country string) {
	s.store.SetSelectedCountry(country)

	if !s.refetchOn {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Watching {
		s.issueLocked()
	}
}

// Close stops watching and waits for in-flight fetches to return.
func (s *Scheduler) Close() {
	s.StopWatching()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.shutdown()
	s.inflight.Wait()
}

func (s *Scheduler) tickLoop(generation uint64, ticker Ticker, stop <-chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			s.onTick(generation)
		}
	}
}

func (s *Scheduler) onTick(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation || s.state != Watching {
		return
	}
	s.issueLocked()
}

// resetLocked ends the current generation: ticks stop and fetches for it are
// cancelled and will be discarded. Their loading state is dropped here, not
// when they return.
func (s *Scheduler) resetLocked() {
	if s.stopTicks != nil {
		close(s.stopTicks)
		s.stopTicks = nil
	}
	if s.genCancel != nil {
		s.genCancel()
		s.genCtx, s.genCancel = nil, nil
	}
	s.generation++
	if s.open > 0 {
		s.open = 0
		s.store.ClearLoading()
	}
}

// issueLocked starts one fetch of the watched region in the current
// generation.
func (s *Scheduler) issueLocked() {
	ctx := s.genCtx
	s.issued++
	seq := s.issued
	generation := s.generation
	region := s.region

	s.open++
	s.store.BeginFetch()
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		snap, err := s.fetcher.Fetch(ctx, region)
		s.complete(generation, seq, snap, err)
	}()
}

func (s *Scheduler) complete(generation, seq uint64, snap flight.Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		s.metrics.ObserveStale()
		s.log.Debug("discarding result from ended watch",
			logger.Uint64("generation", generation),
			logger.Uint64("seq", seq),
		)
		return
	}
	s.open--
	if seq <= s.applied {
		s.store.EndFetch()
		s.metrics.ObserveStale()
		s.log.Debug("discarding stale result",
			logger.Uint64("generation", generation),
			logger.Uint64("seq", seq),
		)
		return
	}
	s.applied = seq

	if err != nil {
		surfaced := s.store.OnFetchFailed(err)
		if surfaced && s.suspendOn && s.state == Watching {
			s.state = Suspended
			s.log.Info("suspended after error", logger.Error(err))
		}
		return
	}
	s.store.OnFetchSucceeded(snap)
}
