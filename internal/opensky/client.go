package opensky

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/five82/skytrack/internal/flight"
	"github.com/five82/skytrack/internal/logger"
	"github.com/five82/skytrack/internal/metrics"
)

// Fetcher retrieves state vectors for a region. *Client implements it; the
// refresh scheduler depends only on this interface.
type Fetcher interface {
	Fetch(ctx context.Context, region flight.Region) (flight.Snapshot, error)
}

var _ Fetcher = (*Client)(nil)

const (
	defaultBaseURL   = "https://opensky-network.org/api"
	defaultUserAgent = "skytrack/0.1"
	defaultTimeout   = 15 * time.Second
	maxBodyBytes     = 32 << 20
)

var tracer = otel.Tracer("github.com/five82/skytrack/internal/opensky")

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Reachability Reachability // nil probes the API host over TCP
	Logger       *logger.Logger
	Metrics      *metrics.Collector
}

// Client talks to the OpenSky REST API. It keeps no per-call state, so a
// caller may abandon a Fetch and start another at any time.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	reach     Reachability
	log       *logger.Logger
	metrics   *metrics.Collector
}

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	reach := opts.Reachability
	if reach == nil {
		probe, err := NewDialProbe(base.String())
		if err != nil {
			return nil, fmt.Errorf("build reachability probe: %w", err)
		}
		reach = probe
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: userAgent,
		reach:     reach,
		log:       opts.Logger.Named("opensky-client"),
		metrics:   opts.Metrics,
	}, nil
}

// Time is a pointer so a 2xx body without it ({}, null, an error object)
// is rejected instead of read as an empty snapshot.
type statesResponse struct {
	Time   *int64          `json:"time"`
	States []flight.Vector `json:"states"`
}

// Fetch retrieves all state vectors inside region. Every failure is a
// *FetchError.
func (c *Client) Fetch(ctx context.Context, region flight.Region) (snap flight.Snapshot, err error) {
	ctx, span := tracer.Start(ctx, "opensky.Fetch", trace.WithAttributes(
		attribute.Float64("region.lamin", region.MinLat),
		attribute.Float64("region.lomin", region.MinLon),
		attribute.Float64("region.lamax", region.MaxLat),
		attribute.Float64("region.lomax", region.MaxLon),
	))
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = KindOf(err).String()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("flights", len(snap.Records)))
		}
		span.End()
		c.metrics.ObserveFetch(outcome, time.Since(start))
	}()

	if !region.Valid() {
		return flight.Snapshot{}, &FetchError{Kind: KindInvalidRequest, Err: fmt.Errorf("invalid region %v", region)}
	}
	if !c.reach.Reachable(ctx) {
		c.log.Info("api host unreachable", logger.String("host", c.baseURL.Host))
		return flight.Snapshot{}, &FetchError{Kind: KindOffline}
	}

	req, err := c.newStatesRequest(ctx, region)
	if err != nil {
		return flight.Snapshot{}, &FetchError{Kind: KindInvalidRequest, Err: err}
	}
	requestID := req.Header.Get("X-Request-ID")
	span.SetAttributes(attribute.String("request_id", requestID))
	c.logRequest(req, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logResponse(requestID, nil, nil, err, time.Since(start))
		kind := KindUnknown
		if ctx.Err() == nil && isConnectError(err) {
			// The link dropped after the probe last said yes.
			kind = KindOffline
		}
		return flight.Snapshot{}, &FetchError{Kind: kind, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.logResponse(requestID, resp, body, readErr, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return flight.Snapshot{}, httpError(resp.StatusCode, body)
	}
	if readErr != nil {
		return flight.Snapshot{}, &FetchError{Kind: KindUnknown, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", readErr)}
	}

	var payload statesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return flight.Snapshot{}, &FetchError{Kind: KindDecoding, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload.Time == nil {
		return flight.Snapshot{}, &FetchError{Kind: KindDecoding, StatusCode: resp.StatusCode, Err: errors.New("decode response: missing time")}
	}
	return flight.NewSnapshot(*payload.Time, payload.States), nil
}

// isConnectError reports whether err failed before a connection existed:
// DNS lookup or dial.
func isConnectError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (c *Client) newStatesRequest(ctx context.Context, region flight.Region) (*http.Request, error) {
	reqURL := c.baseURL.JoinPath("states", "all")
	values := url.Values{}
	for k, v := range region.QueryValues() {
		values.Set(k, v)
	}
	reqURL.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func httpError(status int, body []byte) *FetchError {
	fe := &FetchError{Kind: KindHTTP, StatusCode: status}
	var apiErr APIError
	if len(body) > 0 && json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		fe.API = &apiErr
	}
	fe.Err = errors.New(http.StatusText(status))
	return fe
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base_url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
