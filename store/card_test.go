package store

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/cardctl/internal/fakeplatform"
	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/network"
	"github.com/s0up4200/cardctl/transport"
)

func TestCardStore_Cards(t *testing.T) {
	env := newTestEnv(t)
	s := NewCardStore(env.backend)
	ctx := context.Background()

	cards, err := s.Cards(ctx, false)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "crd_1", cards[0].AccountID)
	assert.True(t, cards[0].IsActive())
	assert.Equal(t, "100.00 USD", cards[0].SpendableToday.String())
	assert.Equal(t, model.CardInactive, cards[1].State)

	_, err = s.Cards(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, env.srv.Calls(http.MethodGet, "/user/accounts"))

	_, err = s.Cards(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, env.srv.Calls(http.MethodGet, "/user/accounts"))
}

func TestCardStore_CardsFromFileCache(t *testing.T) {
	env := newTestEnv(t)
	cache := env.withFileCache(t)
	ctx := context.Background()

	_, err := NewCardStore(env.backend).Cards(ctx, false)
	require.NoError(t, err)

	// a fresh store has an empty memory cache but finds the file
	cards, err := NewCardStore(env.backend).Cards(ctx, false)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "4242", cards[0].LastFour)
	assert.Equal(t, 1, env.srv.Calls(http.MethodGet, "/user/accounts"))

	// another session does not see it
	cache.Scope("other")
	_, err = NewCardStore(env.backend).Cards(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, env.srv.Calls(http.MethodGet, "/user/accounts"))
}

func TestCardStore_LockUnlock(t *testing.T) {
	env := newTestEnv(t)
	env.withFileCache(t)
	s := NewCardStore(env.backend)
	ctx := context.Background()

	_, err := s.Cards(ctx, false)
	require.NoError(t, err)

	card, err := s.Lock(ctx, "crd_1")
	require.NoError(t, err)
	assert.Equal(t, model.CardInactive, card.State)

	cards, err := s.Cards(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, model.CardInactive, cards[0].State)
	assert.Equal(t, 2, env.srv.Calls(http.MethodGet, "/user/accounts"))

	card, err = s.Unlock(ctx, "crd_1")
	require.NoError(t, err)
	assert.True(t, card.IsActive())
	assert.Equal(t, 1, env.srv.Calls(http.MethodPost, "/user/accounts/crd_1/enable"))
}

func TestCardStore_CardAndDetails(t *testing.T) {
	env := newTestEnv(t)
	s := NewCardStore(env.backend)
	ctx := context.Background()

	card, err := s.Card(ctx, "crd_1")
	require.NoError(t, err)
	assert.Equal(t, "visa", card.CardNetwork)
	require.NotNil(t, card.Features)
	assert.True(t, card.Features.SetPIN)

	details, err := s.Details(ctx, "crd_1")
	require.NoError(t, err)
	assert.Equal(t, "************1111", details.MaskedPAN())

	_, err = s.Details(ctx, "crd_2")
	require.Error(t, err)
	assert.ErrorIs(t, err, network.ErrIncorrectParameters)

	_, err = s.Card(ctx, "")
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestCardStore_CardNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := NewCardStore(env.backend).Card(context.Background(), "crd_missing")
	require.Error(t, err)

	var apiErr *network.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, fakeplatform.CodeNotFound, apiErr.BackendCode)
}

func TestCardStore_SetPIN(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr error
	}{
		{name: "valid", pin: "1234"},
		{name: "too short", pin: "123", wantErr: ErrInvalidPIN},
		{name: "too long", pin: "12345", wantErr: ErrInvalidPIN},
		{name: "not digits", pin: "12a4", wantErr: ErrInvalidPIN},
		{name: "empty", pin: "", wantErr: ErrInvalidPIN},
	}

	env := newTestEnv(t)
	s := NewCardStore(env.backend)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SetPIN(context.Background(), "crd_1", tt.pin)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	assert.Equal(t, 1, env.srv.Calls(http.MethodPost, "/user/accounts/crd_1/pin"))
}

func TestCardStore_ActivatePhysical(t *testing.T) {
	env := newTestEnv(t)
	s := NewCardStore(env.backend)
	ctx := context.Background()

	result, err := s.ActivatePhysical(ctx, "crd_2", "999999")
	require.NoError(t, err)
	assert.False(t, result.Activated())
	assert.Equal(t, fakeplatform.CodeInvalidSecret, result.ErrorCode)

	result, err = s.ActivatePhysical(ctx, "crd_2", fakeplatform.Secret)
	require.NoError(t, err)
	assert.True(t, result.Activated())

	card, err := s.Card(ctx, "crd_2")
	require.NoError(t, err)
	assert.True(t, card.IsActive())
}

func TestCardStore_FundingSources(t *testing.T) {
	env := newTestEnv(t)
	s := NewCardStore(env.backend)
	ctx := context.Background()

	sources, err := s.FundingSources(ctx, "crd_1")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "0.50 BTC", sources[1].Balance.String())

	current, err := s.FundingSource(ctx, "crd_1")
	require.NoError(t, err)
	assert.Equal(t, "fs_1", current.ID)

	changed, err := s.SetFundingSource(ctx, "crd_1", "fs_2")
	require.NoError(t, err)
	assert.Equal(t, "fs_2", changed.ID)

	current, err = s.FundingSource(ctx, "crd_1")
	require.NoError(t, err)
	assert.Equal(t, "fs_2", current.ID)

	_, err = s.SetFundingSource(ctx, "crd_1", "")
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestCardStore_MonthlySpending(t *testing.T) {
	env := newTestEnv(t)
	s := NewCardStore(env.backend)

	spending, err := s.MonthlySpending(context.Background(), "crd_1", time.February, 2024)
	require.NoError(t, err)
	assert.True(t, spending.PreviousSpendingExists)
	require.Len(t, spending.Spending, 2)
	assert.Equal(t, "restaurants", spending.Spending[0].CategoryID)

	_, err = s.MonthlySpending(context.Background(), "crd_1", 13, 2024)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestCardStore_Overview(t *testing.T) {
	env := newTestEnv(t)
	s := NewCardStore(env.backend)
	s.now = func() time.Time { return time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC) }

	overview, err := s.Overview(context.Background(), "crd_1")
	require.NoError(t, err)
	assert.Equal(t, "crd_1", overview.Card.AccountID)
	assert.Equal(t, "fs_1", overview.FundingSource.ID)
	assert.Len(t, overview.Spending.Spending, 2)

	_, err = s.Overview(context.Background(), "crd_missing")
	assert.Error(t, err)
}

// gatedRequester holds the first request until release is closed
type gatedRequester struct {
	next    Requester
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedRequester) Do(ctx context.Context, req transport.Request) ([]byte, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
		<-g.release
	}
	return g.next.Do(ctx, req)
}

func TestCardStore_SessionSwitchDuringLoad(t *testing.T) {
	env := newTestEnv(t)
	cache := env.withFileCache(t)
	gate := &gatedRequester{
		next:    env.backend.Network,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	env.backend.Network = gate
	s := NewCardStore(env.backend)

	done := make(chan error, 1)
	go func() {
		_, err := s.Cards(context.Background(), false)
		done <- err
	}()
	<-gate.started

	// another user signs in while the first load is in flight
	cache.Scope("tok_bob")
	s.Invalidate()

	// a caller in the new session starts its own load
	_, err := s.Cards(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), gate.calls.Load())
	require.NoError(t, cache.Delete(cardsEntry))
	s.cards.clear()

	close(gate.release)
	require.NoError(t, <-done)

	_, inMemory := s.cards.peek(cardsEntry)
	assert.False(t, inMemory)

	var cached []model.Card
	found, err := cache.Get(cardsEntry, &cached)
	require.NoError(t, err)
	assert.False(t, found, "stale load must not write into the new scope")

	cache.Scope(testToken)
	found, err = cache.Get(cardsEntry, &cached)
	require.NoError(t, err)
	assert.False(t, found)
}
