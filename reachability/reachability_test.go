package reachability

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	m := NewStatic(false)
	assert.False(t, m.Reachable())

	var got []Status
	unsubscribe := m.Subscribe(func(s Status) { got = append(got, s) })

	m.SetReachable(true)
	m.SetReachable(true) // no transition
	m.SetReachable(false)
	assert.Equal(t, []Status{StatusReachable, StatusUnreachable}, got)

	unsubscribe()
	m.SetReachable(true)
	assert.Len(t, got, 2)
	assert.True(t, m.Reachable())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "reachable", StatusReachable.String())
	assert.Equal(t, "unreachable", StatusUnreachable.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}

func TestProber_Probe(t *testing.T) {
	var mu sync.Mutex
	up := false
	dial := func(ctx context.Context, network, address string) (net.Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		if !up {
			return nil, errors.New("connection refused")
		}
		client, server := net.Pipe()
		server.Close()
		return client, nil
	}

	p := NewProber("platform.invalid:443", zerolog.Nop(), WithDialer(dial))

	var transitions []Status
	p.Subscribe(func(s Status) { transitions = append(transitions, s) })

	assert.Equal(t, StatusUnreachable, p.Probe(context.Background()))
	assert.False(t, p.Reachable())

	mu.Lock()
	up = true
	mu.Unlock()

	assert.Equal(t, StatusReachable, p.Probe(context.Background()))
	assert.Equal(t, StatusReachable, p.Probe(context.Background()))
	assert.True(t, p.Reachable())
	assert.Equal(t, []Status{StatusUnreachable, StatusReachable}, transitions)
}

func TestProber_RunStopsOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	p := NewProber(listener.Addr().String(), zerolog.Nop(), WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, p.Reachable, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestProber_ShutdownKeepsLastStatus(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	dial := func(ctx context.Context, network, address string) (net.Conn, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			client, server := net.Pipe()
			server.Close()
			return client, nil
		}
		// later dials hang until the caller gives up
		<-ctx.Done()
		return nil, ctx.Err()
	}

	p := NewProber("platform.invalid:443", zerolog.Nop(),
		WithDialer(dial),
		WithInterval(10*time.Millisecond),
		WithDialTimeout(time.Minute),
	)

	var tmu sync.Mutex
	var transitions []Status
	p.Subscribe(func(s Status) {
		tmu.Lock()
		transitions = append(transitions, s)
		tmu.Unlock()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.True(t, p.Reachable())
	tmu.Lock()
	defer tmu.Unlock()
	assert.Equal(t, []Status{StatusReachable}, transitions)
}

func TestProber_RunAgainstListener(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	p := NewProber(listener.Addr().String(), zerolog.Nop(), WithInterval(10*time.Millisecond))

	var tmu sync.Mutex
	var transitions []Status
	p.Subscribe(func(s Status) {
		tmu.Lock()
		transitions = append(transitions, s)
		tmu.Unlock()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Run(ctx), context.DeadlineExceeded)

	assert.True(t, p.Reachable())
	tmu.Lock()
	defer tmu.Unlock()
	assert.NotContains(t, transitions, StatusUnreachable)
}

func TestNewProber_DefaultInterval(t *testing.T) {
	p := NewProber("platform.invalid:443", zerolog.Nop())
	assert.Equal(t, DefaultInterval, p.interval)
	assert.Equal(t, 10*time.Second, DefaultInterval)
}
