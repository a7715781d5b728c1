package store

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/network"
)

func TestConfigStore_ContextConfiguration(t *testing.T) {
	env := newTestEnv(t)
	env.withFileCache(t)
	ctx := context.Background()

	cfg, err := NewConfigStore(env.backend).ContextConfiguration(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "Acme", cfg.Team.Name)
	assert.Equal(t, "Acme Card", cfg.Project.Name)
	assert.Equal(t, model.KindPhone, cfg.Project.PrimaryAuthCredential)
	assert.Equal(t, []string{model.KindEmail, model.KindBirthDate}, cfg.Project.SecondaryAuthCredentials)

	s := NewConfigStore(env.backend)
	_, err = s.ContextConfiguration(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, env.srv.Calls(http.MethodGet, "/config"))

	_, err = s.ContextConfiguration(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, env.srv.Calls(http.MethodGet, "/config"))
}

func TestConfigStore_CardProducts(t *testing.T) {
	env := newTestEnv(t)
	s := NewConfigStore(env.backend)
	ctx := context.Background()

	products, err := s.CardProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "cp_1", products[0].ID)

	product, err := s.CardProduct(ctx, "cp_1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Bank", product.CardIssuer)
	require.NotNil(t, product.CardholderAgreement)
	assert.Equal(t, model.ContentMarkdown, product.CardholderAgreement.Format)

	_, _ = s.CardProducts(ctx)
	_, _ = s.CardProduct(ctx, "cp_1")
	assert.Equal(t, 1, env.srv.Calls(http.MethodGet, "/config/cardproducts"))
	assert.Equal(t, 1, env.srv.Calls(http.MethodGet, "/config/cardproducts/cp_1"))

	s.Invalidate()
	_, _ = s.CardProducts(ctx)
	assert.Equal(t, 2, env.srv.Calls(http.MethodGet, "/config/cardproducts"))

	_, err = s.CardProduct(ctx, "cp_missing")
	assert.ErrorIs(t, err, network.ErrIncorrectParameters)
	_, err = s.CardProduct(ctx, "")
	assert.ErrorIs(t, err, ErrMissingID)
}
