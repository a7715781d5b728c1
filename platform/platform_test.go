package platform

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/cardctl/internal/fakeplatform"
	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/network"
	"github.com/s0up4200/cardctl/reachability"
	"github.com/s0up4200/cardctl/transport"
)

const testToken = "tok_platform"

func newTestPlatform(t *testing.T, monitor reachability.Monitor) (*Platform, *fakeplatform.Server) {
	t.Helper()

	srv := fakeplatform.New()
	t.Cleanup(srv.Close)
	srv.SetSession(testToken)

	p, err := New(Options{
		BaseURL:      srv.URL,
		APIKey:       fakeplatform.APIKey,
		SessionToken: testToken,
		CacheDir:     t.TempDir(),
		Monitor:      monitor,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(p.Close)

	return p, srv
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{name: "missing base URL", opts: Options{APIKey: "k"}, wantErr: transport.ErrInvalidConfig},
		{name: "missing API key", opts: Options{BaseURL: "https://api.example.com"}, wantErr: transport.ErrInvalidConfig},
		{name: "no host to probe", opts: Options{BaseURL: "/relative", APIKey: "k"}, wantErr: transport.ErrInvalidConfig},
		{name: "minimal", opts: Options{BaseURL: "https://api.example.com", APIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.opts, zerolog.Nop())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer p.Close()
			assert.Nil(t, p.Cache())
			assert.NotEmpty(t, p.Kinds())
		})
	}
}

func TestProbeAddress(t *testing.T) {
	tests := []struct {
		baseURL  string
		expected string
	}{
		{"https://api.example.com/v1", "api.example.com:443"},
		{"http://api.example.com", "api.example.com:80"},
		{"http://127.0.0.1:8080", "127.0.0.1:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			address, err := probeAddress(tt.baseURL)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, address)
		})
	}
}

func TestPlatform_SessionExpired(t *testing.T) {
	p, srv := newTestPlatform(t, reachability.NewStatic(true))
	ctx := context.Background()

	var fired atomic.Int32
	p.OnSessionExpired(func() { fired.Add(1) })

	_, err := p.Cards.Cards(ctx, false)
	require.NoError(t, err)
	scopeDir := filepath.Join(p.Cache().Dir(), p.Cache().ScopeID())
	assert.DirExists(t, scopeDir)

	srv.ExpireSession()
	_, err = p.Cards.Cards(ctx, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, network.ErrInvalidSession)

	assert.Equal(t, int32(1), fired.Load())
	assert.Empty(t, p.SessionToken())
	assert.Empty(t, p.Cache().ScopeID())
	_, statErr := os.Stat(scopeDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPlatform_Deprecated(t *testing.T) {
	p, srv := newTestPlatform(t, reachability.NewStatic(true))

	var fired atomic.Int32
	p.OnDeprecated(func() { fired.Add(1) })
	assert.False(t, p.Deprecated())

	srv.FailNext(http.MethodGet, "/user/accounts", http.StatusGone, http.StatusGone)
	for range 2 {
		_, err := p.Cards.Cards(context.Background(), true)
		assert.ErrorIs(t, err, network.ErrSDKDeprecated)
	}

	assert.True(t, p.Deprecated())
	assert.Equal(t, int32(2), fired.Load())
	// deprecation does not end the session
	assert.Equal(t, testToken, p.SessionToken())
}

func TestPlatform_LoginAndLogout(t *testing.T) {
	p, srv := newTestPlatform(t, reachability.NewStatic(true))
	ctx := context.Background()
	oldScope := p.Cache().ScopeID()

	v, err := p.Verifications.StartPhone(ctx, model.PhoneNumber{CountryCode: "1", PhoneNumber: "5555550100"})
	require.NoError(t, err)
	v, err = p.Verifications.Complete(ctx, v, fakeplatform.Secret)
	require.NoError(t, err)
	require.True(t, v.IsPassed())

	user, err := p.Login(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, user.UserToken, p.SessionToken())
	assert.NotEqual(t, oldScope, p.Cache().ScopeID())

	// the new token is accepted by session-only endpoints
	cards, err := p.Cards.Cards(ctx, false)
	require.NoError(t, err)
	assert.Len(t, cards, 2)

	require.NoError(t, p.Logout(ctx))
	assert.Empty(t, p.SessionToken())
	assert.Empty(t, srv.Token())
	assert.Empty(t, p.Cache().ScopeID())

	// logging out twice still clears local state
	require.NoError(t, p.Logout(ctx))
}

func TestPlatform_CreateUser(t *testing.T) {
	p, srv := newTestPlatform(t, reachability.NewStatic(true))

	user, err := p.CreateUser(context.Background(),
		model.PersonalName{FirstName: "Ada", LastName: "Lovelace"},
		model.Email{Email: "ada@example.com"},
	)
	require.NoError(t, err)
	assert.Equal(t, srv.Token(), p.SessionToken())
	assert.Equal(t, user.UserToken, p.SessionToken())

	current, err := p.Users.CurrentUser(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, current.UserID)
}

func TestPlatform_ReplaysAfterMaintenance(t *testing.T) {
	monitor := reachability.NewStatic(true)
	p, srv := newTestPlatform(t, monitor)

	srv.FailNext(http.MethodGet, "/user/accounts", http.StatusServiceUnavailable)

	type outcome struct {
		cards []model.Card
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		cards, err := p.Cards.Cards(context.Background(), true)
		done <- outcome{cards, err}
	}()

	require.Eventually(t, func() bool { return p.Network().Pending() == 1 }, time.Second, 5*time.Millisecond)

	monitor.SetReachable(false)
	monitor.SetReachable(true)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Len(t, res.cards, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("request was not replayed")
	}

	assert.Equal(t, 2, srv.Calls(http.MethodGet, "/user/accounts"))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.Metrics().Queued))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.Metrics().Replayed.WithLabelValues("succeeded")))
}

func TestPlatform_Run(t *testing.T) {
	srv := fakeplatform.New()
	defer srv.Close()

	p, err := New(Options{
		BaseURL:       srv.URL,
		APIKey:        fakeplatform.APIKey,
		ProbeInterval: 10 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	defer p.Close()

	assert.False(t, p.Reachable())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, p.Reachable())

	custom, err := New(Options{BaseURL: srv.URL, APIKey: "k", Monitor: reachability.NewStatic(true)}, zerolog.Nop())
	require.NoError(t, err)
	defer custom.Close()
	assert.NoError(t, custom.Run(context.Background()))
}
