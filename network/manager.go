package network

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/s0up4200/cardctl/metrics"
	"github.com/s0up4200/cardctl/reachability"
	"github.com/s0up4200/cardctl/transport"
)

// Doer executes a single platform request. *transport.Client implements it.
type Doer interface {
	Do(ctx context.Context, r transport.Request) (*transport.Response, error)
}

// Option configures a Manager
type Option func(*Manager)

// WithMonitor replays queued requests whenever m reports reachable
func WithMonitor(m reachability.Monitor) Option {
	return func(mgr *Manager) {
		mgr.monitor = m
	}
}

// WithMaxPending bounds the replay queue. Zero means unbounded.
func WithMaxPending(n int) Option {
	return func(mgr *Manager) {
		if n >= 0 {
			mgr.maxPending = n
		}
	}
}

// WithMetrics records traffic on the given collectors
func WithMetrics(c *metrics.Collectors) Option {
	return func(mgr *Manager) {
		mgr.metrics = c
	}
}

// Manager classifies platform responses, broadcasts session and
// connectivity events and holds failed requests for replay
type Manager struct {
	doer       Doer
	logger     zerolog.Logger
	monitor    reachability.Monitor
	maxPending int
	metrics    *metrics.Collectors
	events     broadcaster

	mu          sync.Mutex
	queue       []*pendingRequest
	replaying   bool
	unsubscribe func()
}

type pendingRequest struct {
	id   uuid.UUID
	req  transport.Request
	ctx  context.Context
	done chan result
}

type result struct {
	body []byte
	err  error
}

// NewManager creates a network manager over doer
func NewManager(doer Doer, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		doer:   doer,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.monitor != nil {
		m.unsubscribe = m.monitor.Subscribe(m.onReachability)
	}

	return m
}

// Close detaches the manager from its reachability monitor
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Subscribe registers fn for broadcast events
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	return m.events.subscribe(fn)
}

// Pending returns the number of requests waiting for replay
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Do executes the request and returns the response body of a successful
// call. A request that fails because the network is unreachable or the
// server is in maintenance is queued, and Do blocks until it has been
// replayed or ctx is done.
func (m *Manager) Do(ctx context.Context, req transport.Request) ([]byte, error) {
	body, err := m.execute(ctx, req)
	if err == nil {
		return body, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
		return nil, err
	}

	p, qerr := m.enqueue(ctx, req)
	if qerr != nil {
		return nil, errors.Join(err, qerr)
	}

	select {
	case r := <-p.done:
		return r.body, r.err
	case <-ctx.Done():
		m.remove(p)
		return nil, fmt.Errorf("waiting for replay of %s: %w", req.Route, ctx.Err())
	}
}

// execute performs one attempt and classifies the outcome
func (m *Manager) execute(ctx context.Context, req transport.Request) ([]byte, error) {
	resp, err := m.doer.Do(ctx, req)
	if err != nil {
		var netErr *transport.NetworkError
		if errors.As(err, &netErr) && ctx.Err() == nil {
			m.observe(CodeNetworkUnreachable.String())
			m.publish(EventNetworkUnreachable)
			return nil, &APIError{Code: CodeNetworkUnreachable, Err: err}
		}
		return nil, err
	}

	code, failed := Classify(resp.StatusCode)
	if !failed {
		m.observe("success")
		return resp.Body, nil
	}

	m.observe(code.String())
	apiErr := newStatusError(resp.StatusCode, code, resp.Body)

	switch code {
	case CodeInvalidSession:
		m.logger.Warn().Str("path", req.Route.String()).Msg("Session rejected by platform")
		m.publish(EventSessionExpired)
	case CodeSDKDeprecated:
		m.logger.Error().Str("path", req.Route.String()).Msg("Client version deprecated by platform")
		m.publish(EventSDKDeprecated)
	case CodeServerMaintenance:
		m.logger.Warn().Str("path", req.Route.String()).Msg("Platform in maintenance")
		m.publish(EventServerMaintenance)
	default:
		m.logger.Debug().
			Str("path", req.Route.String()).
			Int("status", resp.StatusCode).
			Int("backend_code", apiErr.BackendCode).
			Msg("Platform request failed")
	}

	return nil, apiErr
}

func (m *Manager) enqueue(ctx context.Context, req transport.Request) (*pendingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxPending > 0 && len(m.queue) >= m.maxPending {
		return nil, ErrQueueFull
	}

	p := &pendingRequest{
		id:   uuid.New(),
		req:  req,
		ctx:  ctx,
		done: make(chan result, 1),
	}
	m.queue = append(m.queue, p)

	m.logger.Info().
		Str("request_id", p.id.String()).
		Str("path", req.Route.String()).
		Int("pending", len(m.queue)).
		Msg("Request queued for replay")

	if m.metrics != nil {
		m.metrics.Queued.Inc()
		m.metrics.Pending.Set(float64(len(m.queue)))
	}

	return p, nil
}

func (m *Manager) remove(p *pendingRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, q := range m.queue {
		if q == p {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}
	if m.metrics != nil {
		m.metrics.Pending.Set(float64(len(m.queue)))
	}
}

func (m *Manager) head() *pendingRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil
	}
	return m.queue[0]
}

// Replay re-executes queued requests one at a time in the order they were
// queued. If a request fails again with a queueable condition it stays at
// the head of the queue and replay stops. Concurrent calls are no-ops.
func (m *Manager) Replay(ctx context.Context) error {
	m.mu.Lock()
	if m.replaying {
		m.mu.Unlock()
		return nil
	}
	m.replaying = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.replaying = false
		m.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p := m.head()
		if p == nil {
			return nil
		}

		if p.ctx.Err() != nil {
			m.remove(p)
			m.replayed("abandoned")
			continue
		}

		body, err := m.execute(p.ctx, p.req)

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsRetryable() {
			m.replayed("requeued")
			m.logger.Warn().
				Str("request_id", p.id.String()).
				Int("pending", m.Pending()).
				Msg("Replay interrupted, keeping queue")
			return fmt.Errorf("replay stopped: %w", err)
		}

		m.remove(p)
		if err != nil {
			m.replayed("failed")
		} else {
			m.replayed("succeeded")
		}
		p.done <- result{body: body, err: err}

		m.logger.Debug().
			Str("request_id", p.id.String()).
			Str("path", p.req.Route.String()).
			Msg("Replayed queued request")
	}
}

func (m *Manager) onReachability(s reachability.Status) {
	if s != reachability.StatusReachable {
		return
	}
	m.publish(EventNetworkRestored)

	if m.Pending() == 0 {
		return
	}
	go func() {
		if err := m.Replay(context.Background()); err != nil {
			m.logger.Debug().Err(err).Msg("Replay after reachability restored did not finish")
		}
	}()
}

func (m *Manager) publish(e Event) {
	if m.metrics != nil {
		m.metrics.Events.WithLabelValues(e.String()).Inc()
	}
	m.events.publish(e)
}

func (m *Manager) observe(label string) {
	if m.metrics != nil {
		m.metrics.Responses.WithLabelValues(label).Inc()
	}
}

func (m *Manager) replayed(outcome string) {
	if m.metrics != nil {
		m.metrics.Replayed.WithLabelValues(outcome).Inc()
	}
}
