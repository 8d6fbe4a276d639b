package opensky

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"
)

// Reachability answers whether the API host can be reached at all. Fetch
// consults it before issuing a request so a dead link reports Offline
// instead of a transport error.
type Reachability interface {
	Reachable(ctx context.Context) bool
}

// ReachabilityFunc adapts a function to Reachability.
type ReachabilityFunc func(ctx context.Context) bool

func (f ReachabilityFunc) Reachable(ctx context.Context) bool { return f(ctx) }

// Always treats the network as reachable.
var Always Reachability = ReachabilityFunc(func(context.Context) bool { return true })

const (
	defaultProbeTimeout = 2 * time.Second
	defaultProbeTTL     = 5 * time.Second
)

// DialProbe opens a TCP connection to the API host and remembers the verdict
// for TTL.
type DialProbe struct {
	Addr    string
	Timeout time.Duration
	TTL     time.Duration

	dial func(ctx context.Context, network, addr string) (net.Conn, error)
	now  func() time.Time

	mu      sync.Mutex
	checked time.Time
	verdict bool
}

// NewDialProbe builds a probe for the host in baseURL, defaulting the port
// from the scheme.
func NewDialProbe(baseURL string) (*DialProbe, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return &DialProbe{Addr: net.JoinHostPort(u.Hostname(), port)}, nil
}

func (p *DialProbe) Reachable(ctx context.Context) bool {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = defaultProbeTTL
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.checked.IsZero() && now().Sub(p.checked) < ttl {
		return p.verdict
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dial := p.dial
	if dial == nil {
		var d net.Dialer
		dial = d.DialContext
	}
	conn, err := dial(dctx, "tcp", p.Addr)
	if err == nil {
		_ = conn.Close()
	}
	// A cancelled caller says nothing about the network; don't cache it.
	if ctx.Err() != nil {
		return err == nil
	}
	p.verdict = err == nil
	p.checked = now()
	return p.verdict
}
