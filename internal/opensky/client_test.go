package opensky

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/skytrack/internal/flight"
	"github.com/five82/skytrack/internal/logger"
	"github.com/five82/skytrack/internal/metrics"
)

var europe = flight.Region{MinLat: 30, MinLon: -10, MaxLat: 50, MaxLon: 10}

const statesBody = `{
  "time": 1700000000,
  "states": [
    ["4b1805", "SWR12   ", "Switzerland", 1699999990, 1699999995, 8.55, 47.45, 1000.0, false, 200.5],
    ["a1b2c3", "AAL1", "United States", null, null, -3, 40, null, true],
    ["short"]
  ]
}`

func newTestClient(t *testing.T, server *httptest.Server, opts Options) *Client {
	t.Helper()
	opts.BaseURL = server.URL
	if opts.Reachability == nil {
		opts.Reachability = Always
	}
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

func TestFetch_DecodesStatesAndSendsHeaders(t *testing.T) {
	t.Parallel()

	var gotPath, gotAccept, gotUA, gotRequestID string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(statesBody))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server, Options{UserAgent: "skytrack-test"})
	snap, err := c.Fetch(context.Background(), europe)
	require.NoError(t, err)

	assert.Equal(t, "/states/all", gotPath)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "skytrack-test", gotUA)
	_, parseErr := uuid.Parse(gotRequestID)
	assert.NoError(t, parseErr, "X-Request-ID should be a uuid")
	assert.Equal(t, map[string]string{"lamin": "30", "lomin": "-10", "lamax": "50", "lomax": "10"}, gotQuery)

	assert.Equal(t, int64(1700000000), snap.Time)
	require.Len(t, snap.Records, 3)
	assert.Equal(t, flight.Record{
		ID: "4b1805", Callsign: "SWR12", OriginCountry: "Switzerland",
		Longitude: 8.55, Latitude: 47.45,
	}, snap.Records[0])
	assert.Equal(t, -3.0, snap.Records[1].Longitude)
	assert.True(t, snap.Records[1].OnGround)
	assert.Equal(t, flight.Record{ID: "short"}, snap.Records[2])
}

func TestFetch_NullStatesYieldsEmptySnapshot(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"time": 5, "states": null}`))
	}))
	t.Cleanup(server.Close)

	snap, err := newTestClient(t, server, Options{}).Fetch(context.Background(), europe)
	require.NoError(t, err)
	assert.NotNil(t, snap.Records)
	assert.Empty(t, snap.Records)
}

func TestFetch_HTTPErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		message string
		api     bool
	}{
		{"api error body", http.StatusNotFound, `{"code":"E404","message":"Region not served","details":{"lamin":"bad"}}`, "Region not served (Code: 404)", true},
		{"client error without body", http.StatusBadRequest, "", "Client error occurred with status code: 400", false},
		{"server error with html", http.StatusBadGateway, "<html>bad gateway</html>", "Server error occurred with status code: 502", false},
		{"body without message", http.StatusTooManyRequests, `{"code":"slow down"}`, "Client error occurred with status code: 429", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			_, err := newTestClient(t, server, Options{}).Fetch(context.Background(), europe)
			require.Error(t, err)

			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, KindHTTP, fe.Kind)
			assert.Equal(t, tt.status, fe.StatusCode)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, tt.api, fe.API != nil)
		})
	}
}

func TestFetch_MalformedBodyIsDecodingError(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"truncated":    `{"time": "soon", "states": [`,
		"empty object": `{}`,
		"null":         `null`,
		"no time":      `{"states":[]}`,
		"null time":    `{"time":null,"states":[]}`,
		"error object": `{"error":"rate limited"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			t.Cleanup(server.Close)

			_, err := newTestClient(t, server, Options{}).Fetch(context.Background(), europe)
			assert.Equal(t, KindDecoding, KindOf(err))
			assert.Equal(t, "Failed to decode response", err.Error())
		})
	}
}

func TestFetch_MissingStatesIsEmptySnapshot(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"time":1700000000}`, `{"time":1700000000,"states":null}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		snap, err := newTestClient(t, server, Options{}).Fetch(context.Background(), europe)
		server.Close()

		require.NoError(t, err, body)
		assert.Equal(t, int64(1700000000), snap.Time)
		assert.NotNil(t, snap.Records)
		assert.Empty(t, snap.Records)
	}
}

func TestFetch_OfflineSkipsNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(server.Close)

	offline := ReachabilityFunc(func(context.Context) bool { return false })
	_, err := newTestClient(t, server, Options{Reachability: offline}).Fetch(context.Background(), europe)

	assert.True(t, IsOffline(err))
	assert.Equal(t, "No internet connection available", err.Error())
	assert.Zero(t, hits.Load())
}

func TestFetch_InvalidRegion(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	_, err := newTestClient(t, server, Options{}).Fetch(context.Background(), flight.Region{MinLat: 10, MaxLat: 5})
	assert.Equal(t, KindInvalidRequest, KindOf(err))
	assert.Equal(t, "Invalid request", err.Error())
}

func TestFetch_CancellationIsUnknownAndRefusedDialIsOffline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)
	c := newTestClient(t, server, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Fetch(ctx, europe)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, "Unknown error occurred", err.Error())

	// Reachability reports the host up but the connection is refused.
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	_, err = newTestClient(t, closed, Options{}).Fetch(context.Background(), europe)
	assert.True(t, IsOffline(err), "got %v", KindOf(err))
	assert.Equal(t, "No internet connection available", err.Error())
}

func TestFetch_RecordsMetrics(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statesBody))
	}))
	t.Cleanup(server.Close)

	collector, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	c := newTestClient(t, server, Options{Metrics: collector})
	_, err = c.Fetch(context.Background(), europe)
	require.NoError(t, err)
	_, _ = c.Fetch(context.Background(), flight.Region{MinLat: 1, MaxLat: 0})

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Fetches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Fetches.WithLabelValues("invalid_request")))
}

func TestFetch_LogsRequestAndTruncatedResponse(t *testing.T) {
	t.Parallel()

	long := `{"time": 1, "states": [], "pad": "` + strings.Repeat("x", 2*bodyPreviewLimit) + `"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(long))
	}))
	t.Cleanup(server.Close)

	core, logs := observer.New(zapcore.DebugLevel)
	c := newTestClient(t, server, Options{Logger: &logger.Logger{Logger: zap.New(core)}})
	_, err := c.Fetch(context.Background(), europe)
	require.NoError(t, err)

	requests := logs.FilterMessage("opensky request").All()
	responses := logs.FilterMessage("opensky response").All()
	require.Len(t, requests, 1)
	require.Len(t, responses, 1)

	reqID := requests[0].ContextMap()["request_id"]
	assert.NotEmpty(t, reqID)
	assert.Equal(t, reqID, responses[0].ContextMap()["request_id"])
	body, _ := responses[0].ContextMap()["body"].(string)
	assert.Less(t, len(body), len(long))
	assert.True(t, strings.HasSuffix(body, "…"))
}

func TestFetchError_Messages(t *testing.T) {
	tests := []struct {
		err  *FetchError
		want string
	}{
		{&FetchError{Kind: KindUnknown, StatusCode: 302}, "Unknown error occurred with status code: 302"},
		{&FetchError{Kind: KindHTTP, StatusCode: 500, API: &APIError{Message: "Down"}}, "Down (Code: 500)"},
		{&FetchError{Kind: KindHTTP, StatusCode: 503}, "Server error occurred with status code: 503"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
	assert.Equal(t, KindUnknown, KindOf(context.Canceled))
	assert.False(t, IsOffline(nil))
}

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, defaultBaseURL, u.String())

	u, err = parseBaseURL("localhost:8080/api/?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https://localhost:8080/api", u.String())

	_, err = parseBaseURL("http://")
	assert.Error(t, err)
}
