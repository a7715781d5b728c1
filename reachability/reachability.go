// Package reachability reports whether the platform host can be reached and
// notifies listeners when that changes.
package reachability

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status is the connectivity state of the platform host
type Status int

const (
	// StatusUnknown is the state before the first probe
	StatusUnknown Status = iota
	// StatusUnreachable means the last probe failed
	StatusUnreachable
	// StatusReachable means the last probe succeeded
	StatusReachable
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case StatusReachable:
		return "reachable"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Monitor reports connectivity and fires listeners on transitions
type Monitor interface {
	Reachable() bool
	Subscribe(fn func(Status)) (unsubscribe func())
}

// listeners is the subscription list shared by monitor implementations
type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Status)
}

func (l *listeners) add(fn func(Status)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(Status))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

func (l *listeners) notify(s Status) {
	l.mu.Lock()
	fns := make([]func(Status), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Static is a monitor whose state is set by the host application
type Static struct {
	mu     sync.RWMutex
	status Status
	subs   listeners
}

// NewStatic creates a monitor starting in the given state
func NewStatic(reachable bool) *Static {
	s := &Static{status: StatusUnreachable}
	if reachable {
		s.status = StatusReachable
	}
	return s
}

// Reachable reports the last state set
func (s *Static) Reachable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == StatusReachable
}

// Subscribe registers fn for state transitions
func (s *Static) Subscribe(fn func(Status)) func() {
	return s.subs.add(fn)
}

// SetReachable changes the state and notifies listeners on a transition
func (s *Static) SetReachable(reachable bool) {
	next := StatusUnreachable
	if reachable {
		next = StatusReachable
	}

	s.mu.Lock()
	changed := s.status != next
	s.status = next
	s.mu.Unlock()

	if changed {
		s.subs.notify(next)
	}
}

// Prober checks reachability by dialing the platform host over TCP
type Prober struct {
	address  string
	interval time.Duration
	timeout  time.Duration
	dial     func(ctx context.Context, network, address string) (net.Conn, error)
	logger   zerolog.Logger

	mu     sync.RWMutex
	status Status
	subs   listeners
}

// ProberOption configures a Prober
type ProberOption func(*Prober)

// WithInterval sets the time between probes
func WithInterval(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithDialTimeout sets the timeout of a single probe
func WithDialTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithDialer replaces the dial function, mainly for tests
func WithDialer(dial func(ctx context.Context, network, address string) (net.Conn, error)) ProberOption {
	return func(p *Prober) {
		p.dial = dial
	}
}

// DefaultInterval is the probe period when WithInterval is not given
const DefaultInterval = 10 * time.Second

// NewProber creates a prober for host:port
func NewProber(address string, logger zerolog.Logger, opts ...ProberOption) *Prober {
	d := &net.Dialer{}
	p := &Prober{
		address:  address,
		interval: DefaultInterval,
		timeout:  5 * time.Second,
		dial:     d.DialContext,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reachable reports the result of the last probe
func (p *Prober) Reachable() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status == StatusReachable
}

// Status returns the last observed state
func (p *Prober) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Subscribe registers fn for state transitions
func (p *Prober) Subscribe(fn func(Status)) func() {
	return p.subs.add(fn)
}

// SetStatus records a state observed by the host, such as an OS level
// connectivity callback, and notifies listeners on a transition
func (p *Prober) SetStatus(s Status) {
	p.mu.Lock()
	prev := p.status
	p.status = s
	p.mu.Unlock()

	if prev != s {
		p.logger.Debug().
			Str("address", p.address).
			Stringer("from", prev).
			Stringer("to", s).
			Msg("Reachability changed")
		p.subs.notify(s)
	}
}

// Probe dials once and records the result. A dial cut short by the
// caller's context records nothing and returns the last known state.
func (p *Prober) Probe(ctx context.Context) Status {
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status := StatusReachable
	conn, err := p.dial(dialCtx, "tcp", p.address)
	if err != nil {
		if ctx.Err() != nil {
			return p.Status()
		}
		p.logger.Trace().Err(err).Str("address", p.address).Msg("Reachability probe failed")
		status = StatusUnreachable
	} else {
		conn.Close()
	}

	p.SetStatus(status)
	return status
}

// Run probes immediately and then on every interval until ctx is done
func (p *Prober) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Probe(ctx)
		}
	}
}
