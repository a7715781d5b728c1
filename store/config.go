package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/router"
)

const contextConfigEntry = "context_configuration"

// ConfigStore serves the program configuration and card products
type ConfigStore struct {
	b        *Backend
	context  *memo[model.ContextConfiguration]
	products *memo[[]model.CardProductSummary]
	product  *memo[model.CardProduct]
}

// NewConfigStore creates a configuration store on b
func NewConfigStore(b *Backend) *ConfigStore {
	return &ConfigStore{
		b:        b,
		context:  newMemo[model.ContextConfiguration](b.ttl()),
		products: newMemo[[]model.CardProductSummary](b.ttl()),
		product:  newMemo[model.CardProduct](b.ttl()),
	}
}

// ContextConfiguration returns the team and project configuration. Without
// refresh it is served from memory, then from the file cache.
func (s *ConfigStore) ContextConfiguration(ctx context.Context, refresh bool) (model.ContextConfiguration, error) {
	cfg, err := s.context.get(ctx, contextConfigEntry, refresh, func(ctx context.Context) (model.ContextConfiguration, error) {
		scope := s.b.cacheScope()
		var cached model.ContextConfiguration
		if !refresh && s.b.loadCached(contextConfigEntry, &cached) {
			return cached, nil
		}

		cfg, err := fetch[model.ContextConfiguration](ctx, s.b, http.MethodGet, router.NewRoute(router.EndpointContextConfig), nil)
		if err != nil {
			return model.ContextConfiguration{}, err
		}
		s.b.storeCached(scope, contextConfigEntry, cfg)
		return cfg, nil
	})
	if err != nil {
		return model.ContextConfiguration{}, fmt.Errorf("failed to get context configuration: %w", err)
	}
	return cfg, nil
}

// CardProducts lists the card programs available to the project
func (s *ConfigStore) CardProducts(ctx context.Context) ([]model.CardProductSummary, error) {
	products, err := s.products.get(ctx, "all", false, func(ctx context.Context) ([]model.CardProductSummary, error) {
		return fetchList[model.CardProductSummary](ctx, s.b, router.NewRoute(router.EndpointCardProducts))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list card products: %w", err)
	}

	s.b.Logger.Debug().Msgf("Retrieved %d card products", len(products))
	return products, nil
}

// CardProduct returns one card program
func (s *ConfigStore) CardProduct(ctx context.Context, id string) (model.CardProduct, error) {
	if err := requireID(id); err != nil {
		return model.CardProduct{}, err
	}

	product, err := s.product.get(ctx, id, false, func(ctx context.Context) (model.CardProduct, error) {
		route := router.NewRoute(router.EndpointCardProduct, "cardProductId", id)
		return fetch[model.CardProduct](ctx, s.b, http.MethodGet, route, nil)
	})
	if err != nil {
		return model.CardProduct{}, fmt.Errorf("failed to get card product %s: %w", id, err)
	}
	return product, nil
}

// Invalidate forgets everything held in memory
func (s *ConfigStore) Invalidate() {
	s.context.clear()
	s.products.clear()
	s.product.clear()
}
