package state

import (
	"sort"
	"sync"
	"time"

	"github.com/five82/skytrack/internal/cache"
	"github.com/five82/skytrack/internal/flight"
	"github.com/five82/skytrack/internal/logger"
	"github.com/five82/skytrack/internal/metrics"
	"github.com/five82/skytrack/internal/opensky"
)

// Source says where the current flights came from.
type Source int

const (
	SourceNone Source = iota
	SourceLive
	SourceCache
)

func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceCache:
		return "cache"
	default:
		return "none"
	}
}

// View is an immutable copy of the store handed to presentation code.
type View struct {
	Flights         []flight.Record
	Visible         []flight.Record // airborne, then country filter
	Countries       []string
	SelectedCountry string // "" means no filter
	Err             string // user-facing message, "" when healthy
	Loading         bool
	UpdatedAt       time.Time
	DataTime        int64 // API timestamp of the snapshot, seconds
	Source          Source

	ConsecutiveFailures int
}

// FromCache reports whether the flights are the cached fallback.
func (v View) FromCache() bool { return v.Source == SourceCache }

// Options wires a Store to its collaborators. All fields are optional.
type Options struct {
	Cache   cache.Cache
	Logger  *logger.Logger
	Metrics *metrics.Collector
	Now     func() time.Time
}

// Store owns the flight state and fans changes out to subscribers.
type Store struct {
	cache   cache.Cache
	log     *logger.Logger
	metrics *metrics.Collector
	now     func() time.Time

	mu        sync.RWMutex
	flights   []flight.Record
	countries []string
	selected  string
	errMsg    string
	pending   int
	updatedAt time.Time
	dataTime  int64
	source    Source
	failures  int

	nextSub int
	subs    map[int]chan View
	errSubs map[int]chan string
}

// NewStore builds an empty store.
func NewStore(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		cache:     opts.Cache,
		log:       opts.Logger.Named("flight-store"),
		metrics:   opts.Metrics,
		now:       now,
		flights:   []flight.Record{},
		countries: []string{},
		subs:      make(map[int]chan View),
		errSubs:   make(map[int]chan string),
	}
}

// BeginFetch marks one more fetch as in flight. Loading stays set until
// every begun fetch has ended.
func (s *Store) BeginFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending++
	if s.pending == 1 {
		s.publishLocked()
	}
}

// EndFetch ends one in-flight fetch whose result was discarded.
func (s *Store) EndFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endFetchLocked() {
		s.publishLocked()
	}
}

// ClearLoading forgets every in-flight fetch without touching data.
func (s *Store) ClearLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == 0 {
		return
	}
	s.pending = 0
	s.publishLocked()
}

// endFetchLocked reports whether loading went from set to clear.
func (s *Store) endFetchLocked() bool {
	if s.pending == 0 {
		return false
	}
	s.pending--
	return s.pending == 0
}

// OnFetchSucceeded replaces the flights with snap and writes it to the cache.
func (s *Store) OnFetchSucceeded(snap flight.Snapshot) {
	records := flight.CloneRecords(snap.Records)

	if s.cache != nil {
		s.cache.Put(cache.LastSnapshotKey, records)
		s.cache.Put(cache.LastSnapshotTimeKey, snap.Time)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFlightsLocked(records, snap.Time, SourceLive)
	s.errMsg = ""
	s.endFetchLocked()
	s.failures = 0
	s.publishLocked()
}

// OnFetchFailed records a failed fetch. An offline failure falls back to the
// cached snapshot when there is one; otherwise the error message is stored
// and broadcast. It reports whether an error was surfaced.
func (s *Store) OnFetchFailed(err error) bool {
	if err == nil {
		return false
	}

	var cached []flight.Record
	var cachedTime int64
	haveCache := false
	if opensky.IsOffline(err) && s.cache != nil {
		haveCache = s.cache.Get(cache.LastSnapshotKey, &cached)
		if haveCache {
			s.cache.Get(cache.LastSnapshotTimeKey, &cachedTime)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endFetchLocked()
	s.failures++

	if haveCache {
		s.log.Info("offline, showing cached flights", logger.Int("flights", len(cached)))
		s.setFlightsLocked(cached, cachedTime, SourceCache)
		s.errMsg = ""
		s.publishLocked()
		return false
	}

	msg := err.Error()
	s.log.Warn("fetch failed",
		logger.String("kind", opensky.KindOf(err).String()),
		logger.Int("consecutive_failures", s.failures),
		logger.Error(err),
	)
	s.errMsg = msg
	s.publishLocked()
	for _, ch := range s.errSubs {
		select {
		case ch <- msg:
		default:
		}
	}
	return true
}

// SetSelectedCountry changes the country filter; "" clears it. The name is
// matched exactly as given.
func (s *Store) SetSelectedCountry(country string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if country == s.selected {
		return
	}
	s.selected = country
	s.publishLocked()
}

// ClearError forgets the current error message, e.g. once a user has
// dismissed it.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errMsg == "" {
		return
	}
	s.errMsg = ""
	s.publishLocked()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// Subscribe returns a channel that immediately receives the current View and
// then every later change. Slow readers only see the latest View. Call the
// returned func to unsubscribe; the channel is closed.
func (s *Store) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]chan View)
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.viewLocked()
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// Errors returns a channel of surfaced error messages. Nothing is replayed;
// messages that find the buffer full are dropped.
func (s *Store) Errors() (<-chan string, func()) {
	ch := make(chan string, 8)

	s.mu.Lock()
	if s.errSubs == nil {
		s.errSubs = make(map[int]chan string)
	}
	id := s.nextSub
	s.nextSub++
	s.errSubs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.errSubs[id]; ok {
			delete(s.errSubs, id)
			close(ch)
		}
	}
}

func (s *Store) setFlightsLocked(records []flight.Record, dataTime int64, source Source) {
	if records == nil {
		records = []flight.Record{}
	}
	s.flights = records
	s.countries = AvailableCountries(records)
	s.dataTime = dataTime
	s.source = source
	s.updatedAt = s.now()
}

func (s *Store) viewLocked() View {
	flights := flight.CloneRecords(s.flights)
	countries := make([]string, len(s.countries))
	copy(countries, s.countries)
	return View{
		Flights:             flights,
		Visible:             Visible(flights, s.selected),
		Countries:           countries,
		SelectedCountry:     s.selected,
		Err:                 s.errMsg,
		Loading:             s.pending > 0,
		UpdatedAt:           s.updatedAt,
		DataTime:            s.dataTime,
		Source:              s.source,
		ConsecutiveFailures: s.failures,
	}
}

// publishLocked pushes the current view to every subscriber, replacing any
// view they have not read yet.
func (s *Store) publishLocked() {
	if s.metrics != nil {
		s.metrics.SetCounts(len(s.flights), len(Visible(s.flights, s.selected)), len(s.countries))
	}
	if len(s.subs) == 0 {
		return
	}
	view := s.viewLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

// Visible returns airborne flights, narrowed to country when it is non-empty.
// Order is preserved.
func Visible(flights []flight.Record, country string) []flight.Record {
	out := make([]flight.Record, 0, len(flights))
	for _, f := range flights {
		if f.OnGround {
			continue
		}
		if country != "" && f.OriginCountry != country {
			continue
		}
		out = append(out, f)
	}
	return out
}

// AvailableCountries returns the distinct non-empty origin countries in
// ascending order.
func AvailableCountries(flights []flight.Record) []string {
	seen := make(map[string]struct{}, len(flights))
	out := make([]string, 0)
	for _, f := range flights {
		c := f.OriginCountry
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
