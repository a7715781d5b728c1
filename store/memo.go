package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type memoEntry[T any] struct {
	value   T
	expires time.Time
}

// memo is an in-memory TTL cache where concurrent misses for one key share a
// single load. A ttl of zero or less keeps entries until they are cleared.
//
// clear starts a new generation. Loads begun in an older generation still
// answer their callers but are not stored, and new callers never join them.
type memo[T any] struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	gen     uint64
	entries map[string]memoEntry[T]
}

func newMemo[T any](ttl time.Duration) *memo[T] {
	return &memo[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoEntry[T]),
	}
}

func (m *memo[T]) peek(key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.entries, key)
		var zero T
		return zero, false
	}
	return e.value, true
}

func (m *memo[T]) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// set stores v unless the memo was cleared since gen
func (m *memo[T]) set(gen uint64, key string, v T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.entries[key] = memoEntry[T]{value: v, expires: m.now().Add(m.ttl)}
	return true
}

func (m *memo[T]) delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *memo[T]) clear() {
	m.mu.Lock()
	m.gen++
	m.entries = make(map[string]memoEntry[T])
	m.mu.Unlock()
}

// get returns the cached value for key, loading it when missing, expired or
// refresh is set. The load runs with the context of the caller that started
// it; other callers stop waiting when their own context ends.
func (m *memo[T]) get(ctx context.Context, key string, refresh bool, load func(context.Context) (T, error)) (T, error) {
	if !refresh {
		if v, ok := m.peek(key); ok {
			return v, nil
		}
	}

	gen := m.generation()
	flight := strconv.FormatUint(gen, 10) + "/" + key
	ch := m.group.DoChan(flight, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		m.set(gen, key, v)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
