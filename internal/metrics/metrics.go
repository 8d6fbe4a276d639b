// Package metrics exposes Prometheus instrumentation for the fetch pipeline.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the tracker's metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Fetches        *prometheus.CounterVec
	FetchDurations prometheus.Histogram
	StaleResults   prometheus.Counter

	Flights   prometheus.Gauge
	Visible   prometheus.Gauge
	Countries prometheus.Gauge
}

// New registers the metrics against reg, defaulting to the global registry
// when nil.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	fetches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skytrack_fetches_total",
		Help: "State vector fetches, labeled by outcome (ok or the failure kind).",
	}, []string{"outcome"}), "skytrack_fetches_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skytrack_fetch_duration_seconds",
		Help:    "State vector fetch latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}), "skytrack_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}
	stale, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skytrack_stale_results_total",
		Help: "Fetch results discarded because a newer watch or fetch superseded them.",
	}), "skytrack_stale_results_total")
	if err != nil {
		return nil, err
	}
	flights, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skytrack_flights",
		Help: "Flights in the current snapshot.",
	}), "skytrack_flights")
	if err != nil {
		return nil, err
	}
	visible, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skytrack_visible_flights",
		Help: "Airborne flights that pass the country filter.",
	}), "skytrack_visible_flights")
	if err != nil {
		return nil, err
	}
	countries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skytrack_countries",
		Help: "Distinct origin countries in the current snapshot.",
	}), "skytrack_countries")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Fetches:        fetches,
		FetchDurations: durations,
		StaleResults:   stale,
		Flights:        flights,
		Visible:        visible,
		Countries:      countries,
	}, nil
}

// ObserveFetch records one completed fetch.
func (c *Collector) ObserveFetch(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Fetches.WithLabelValues(outcome).Inc()
	c.FetchDurations.Observe(elapsed.Seconds())
}

// ObserveStale counts a result that arrived too late to be applied.
func (c *Collector) ObserveStale() {
	if c == nil {
		return
	}
	c.StaleResults.Inc()
}

// SetCounts updates the snapshot gauges.
func (c *Collector) SetCounts(flights, visible, countries int) {
	if c == nil {
		return
	}
	c.Flights.Set(float64(flights))
	c.Visible.Set(float64(visible))
	c.Countries.Set(float64(countries))
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
