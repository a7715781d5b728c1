// Package store exposes typed, cached accessors for the platform's entities.
//
// Every store shares one Backend: the network manager that executes and
// queues requests, the parser that turns responses into records, and the
// session-scoped file cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/cardctl/filecache"
	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/parser"
	"github.com/s0up4200/cardctl/router"
	"github.com/s0up4200/cardctl/transport"
)

// DefaultTTL is how long in-memory entries stay fresh
const DefaultTTL = 5 * time.Minute

var (
	ErrMissingID    = errors.New("identifier is required")
	ErrInvalidPIN   = errors.New("PIN must be 4 digits")
	ErrInvalidMonth = errors.New("invalid statement month")
	ErrOutOfPeriod  = errors.New("month is outside the statements period")
)

// Requester executes a platform request and returns the response body
type Requester interface {
	Do(ctx context.Context, req transport.Request) ([]byte, error)
}

// Backend is the shared plumbing of every store
type Backend struct {
	Network Requester
	Parser  *parser.Parser
	// Cache may be nil, which disables on-disk caching.
	Cache  *filecache.Cache
	Logger zerolog.Logger
	TTL    time.Duration
}

func (b *Backend) ttl() time.Duration {
	if b.TTL == 0 {
		return DefaultTTL
	}
	return b.TTL
}

func (b *Backend) do(ctx context.Context, method string, route router.Route, body any) ([]byte, error) {
	return b.Network.Do(ctx, transport.Request{Method: method, Route: route, Body: body})
}

// exec performs a request whose response body is not needed
func (b *Backend) exec(ctx context.Context, method string, route router.Route, body any) error {
	_, err := b.do(ctx, method, route, body)
	return err
}

func fetch[T model.Record](ctx context.Context, b *Backend, method string, route router.Route, body any) (T, error) {
	data, err := b.do(ctx, method, route, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return parser.Decode[T](b.Parser, data)
}

func fetchList[T model.Record](ctx context.Context, b *Backend, route router.Route) ([]T, error) {
	data, err := b.do(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, err
	}
	return parser.DecodeList[T](b.Parser, data)
}

// fetchPage returns a list's records together with its paging fields
func fetchPage[T model.Record](ctx context.Context, b *Backend, route router.Route) ([]T, model.List, error) {
	data, err := b.do(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, model.List{}, err
	}
	list, err := parser.Decode[model.List](b.Parser, data)
	if err != nil {
		return nil, model.List{}, err
	}
	items := make([]T, 0, len(list.Data))
	for _, rec := range list.Data {
		v, ok := rec.(T)
		if !ok {
			return nil, model.List{}, fmt.Errorf("%w: list holds %s", parser.ErrUnexpectedKind, rec.Kind())
		}
		items = append(items, v)
	}
	return items, list, nil
}

// loadCached reads a file cache entry, logging failures as misses
func (b *Backend) loadCached(name string, v any) bool {
	if b.Cache == nil {
		return false
	}
	found, err := b.Cache.Get(name, v)
	if err != nil {
		b.Logger.Warn().Err(err).Str("entry", name).Msg("Failed to read cache entry")
		return false
	}
	if found {
		b.Logger.Debug().Str("entry", name).Msg("Loaded from file cache")
	}
	return found
}

// cacheScope is the file cache scope a load starts in
func (b *Backend) cacheScope() string {
	if b.Cache == nil {
		return ""
	}
	return b.Cache.ScopeID()
}

// storeCached writes v into scope. A session switch since the load started
// drops the write.
func (b *Backend) storeCached(scope, name string, v any) {
	if b.Cache == nil {
		return
	}
	err := b.Cache.PutScoped(scope, name, v)
	switch {
	case errors.Is(err, filecache.ErrScopeChanged):
		b.Logger.Debug().Str("entry", name).Msg("Session changed during load, not caching")
	case err != nil:
		b.Logger.Warn().Err(err).Str("entry", name).Msg("Failed to write cache entry")
	}
}

func (b *Backend) dropCached(name string) {
	if b.Cache == nil {
		return
	}
	if err := b.Cache.Delete(name); err != nil {
		b.Logger.Warn().Err(err).Str("entry", name).Msg("Failed to delete cache entry")
	}
}

func requireID(values ...string) error {
	for _, v := range values {
		if v == "" {
			return ErrMissingID
		}
	}
	return nil
}
