package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.ObserveFetch("ok", 120*time.Millisecond)
	c.ObserveFetch("ok", 80*time.Millisecond)
	c.ObserveFetch("offline", time.Millisecond)

	if got := testutil.ToFloat64(c.Fetches.WithLabelValues("ok")); got != 2 {
		t.Fatalf("fetches{ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Fetches.WithLabelValues("offline")); got != 1 {
		t.Fatalf("fetches{offline} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.FetchDurations); got != 1 {
		t.Fatalf("duration series = %d, want 1", got)
	}
}

func TestSetCountsAndStale(t *testing.T) {
	c, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.SetCounts(5, 3, 2)
	c.ObserveStale()

	if got := testutil.ToFloat64(c.Flights); got != 5 {
		t.Fatalf("flights = %v, want 5", got)
	}
	if got := testutil.ToFloat64(c.Visible); got != 3 {
		t.Fatalf("visible = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.Countries); got != 2 {
		t.Fatalf("countries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.StaleResults); got != 1 {
		t.Fatalf("stale = %v, want 1", got)
	}
}

func TestNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second, err := New(reg)
	if err != nil {
		t.Fatalf("New (second): %v", err)
	}

	first.ObserveStale()
	if got := testutil.ToFloat64(second.StaleResults); got != 1 {
		t.Fatalf("second collector sees %v, want shared counter", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.ObserveFetch("ok", time.Second)
	c.ObserveStale()
	c.SetCounts(1, 1, 1)
}

func TestHandlerServesMetrics(t *testing.T) {
	c, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.SetCounts(4, 2, 1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "skytrack_flights 4") {
		t.Fatalf("metrics output missing gauge:\n%s", body)
	}
}
