package store

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/cardctl/filecache"
	"github.com/s0up4200/cardctl/internal/fakeplatform"
	"github.com/s0up4200/cardctl/network"
	"github.com/s0up4200/cardctl/parser"
	"github.com/s0up4200/cardctl/transport"
)

const testToken = "tok_test"

type testEnv struct {
	srv     *fakeplatform.Server
	client  *transport.Client
	backend *Backend
}

// newTestEnv starts a fake platform with an open session and a backend
// talking to it
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv := fakeplatform.New()
	t.Cleanup(srv.Close)
	srv.SetSession(testToken)

	client, err := transport.New(srv.URL, fakeplatform.APIKey, zerolog.Nop(), transport.WithSessionToken(testToken))
	require.NoError(t, err)

	mgr := network.NewManager(client, zerolog.Nop())
	t.Cleanup(mgr.Close)

	return &testEnv{
		srv:    srv,
		client: client,
		backend: &Backend{
			Network: mgr,
			Parser:  parser.New(zerolog.Nop()),
			Logger:  zerolog.Nop(),
		},
	}
}

// withFileCache gives the backend a file cache scoped to the test session
func (e *testEnv) withFileCache(t *testing.T) *filecache.Cache {
	t.Helper()

	cache, err := filecache.New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	cache.Scope(testToken)
	e.backend.Cache = cache
	return cache
}
