// Package platform wires the client stack together and owns the session.
//
// A Platform is the single top-level manager: it builds the transport,
// network manager, parser, file cache and stores from Options, and reacts
// to the events the network manager broadcasts. Session expiry clears the
// session and every cache; SDK deprecation is latched and reported to
// hooks.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/s0up4200/cardctl/filecache"
	"github.com/s0up4200/cardctl/metrics"
	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/network"
	"github.com/s0up4200/cardctl/parser"
	"github.com/s0up4200/cardctl/reachability"
	"github.com/s0up4200/cardctl/store"
	"github.com/s0up4200/cardctl/transport"
)

// Platform is the entry point to the card platform API
type Platform struct {
	Users         *store.UserStore
	Config        *store.ConfigStore
	Verifications *store.VerificationStore
	Cards         *store.CardStore
	Transactions  *store.TransactionStore
	Applications  *store.ApplicationStore
	OAuth         *store.OAuthStore
	Notifications *store.NotificationStore
	Statements    *store.StatementStore
	Offers        *store.OfferStore

	logger  zerolog.Logger
	client  *transport.Client
	network *network.Manager
	parser  *parser.Parser
	cache   *filecache.Cache
	monitor reachability.Monitor
	prober  *reachability.Prober
	metrics *metrics.Collectors

	deprecated  atomic.Bool
	unsubscribe func()

	mu              sync.Mutex
	expiredHooks    []func()
	deprecatedHooks []func()
}

// New builds a Platform from opts
func New(opts Options, logger zerolog.Logger) (*Platform, error) {
	client, err := transport.New(opts.BaseURL, opts.APIKey, logger, transportOptions(opts)...)
	if err != nil {
		return nil, err
	}

	p := &Platform{
		logger:  logger,
		client:  client,
		parser:  parser.New(logger),
		monitor: opts.Monitor,
		metrics: metrics.New(opts.Registerer),
	}

	if p.monitor == nil {
		address, err := probeAddress(opts.BaseURL)
		if err != nil {
			return nil, err
		}
		interval := opts.ProbeInterval
		if interval <= 0 {
			interval = DefaultProbeInterval
		}
		p.prober = reachability.NewProber(address, logger, reachability.WithInterval(interval))
		p.monitor = p.prober
	}

	if opts.CacheDir != "" {
		p.cache, err = filecache.New(opts.CacheDir, logger)
		if err != nil {
			return nil, err
		}
		p.cache.Scope(opts.SessionToken)
	}

	p.network = network.NewManager(client, logger,
		network.WithMonitor(p.monitor),
		network.WithMaxPending(opts.MaxPending),
		network.WithMetrics(p.metrics),
	)
	p.unsubscribe = p.network.Subscribe(p.onEvent)

	b := &store.Backend{
		Network: p.network,
		Parser:  p.parser,
		Cache:   p.cache,
		Logger:  logger,
		TTL:     opts.CacheTTL,
	}
	p.Users = store.NewUserStore(b)
	p.Config = store.NewConfigStore(b)
	p.Verifications = store.NewVerificationStore(b)
	p.Cards = store.NewCardStore(b)
	p.Transactions = store.NewTransactionStore(b)
	p.Applications = store.NewApplicationStore(b, p.Cards)
	p.OAuth = store.NewOAuthStore(b)
	p.Notifications = store.NewNotificationStore(b)
	p.Statements = store.NewStatementStore(b)
	p.Offers = store.NewOfferStore(b)

	logger.Debug().
		Str("base_url", client.BaseURL()).
		Bool("file_cache", p.cache != nil).
		Bool("session", opts.SessionToken != "").
		Msg("Platform client ready")

	return p, nil
}

func transportOptions(opts Options) []transport.Option {
	var out []transport.Option
	if opts.Timeout > 0 {
		out = append(out, transport.WithTimeout(opts.Timeout))
	}
	if opts.HTTPClient != nil {
		out = append(out, transport.WithHTTPClient(opts.HTTPClient))
	}
	if opts.UserAgent != "" {
		out = append(out, transport.WithUserAgent(opts.UserAgent))
	}
	if opts.SDKVersion != "" {
		out = append(out, transport.WithSDKVersion(opts.SDKVersion))
	}
	if len(opts.PinnedKeys) > 0 {
		out = append(out, transport.WithPinnedKeys(opts.PinnedKeys...))
	}
	if opts.RateLimit > 0 {
		out = append(out, transport.WithRateLimit(opts.RateLimit, opts.RateBurst))
	}
	if opts.SessionToken != "" {
		out = append(out, transport.WithSessionToken(opts.SessionToken))
	}
	return out
}

// probeAddress turns the base URL into the host:port the prober dials
func probeAddress(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("%w: cannot derive host from %q", transport.ErrInvalidConfig, baseURL)
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// Close detaches the platform from its event sources
func (p *Platform) Close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	p.network.Close()
}

// Run probes reachability until ctx is done. It returns at once when a
// custom monitor was supplied.
func (p *Platform) Run(ctx context.Context) error {
	if p.prober == nil {
		return nil
	}
	p.logger.Debug().Msg("Starting reachability prober")
	return p.prober.Run(ctx)
}

// Reachable reports the monitor's last known state
func (p *Platform) Reachable() bool {
	return p.monitor.Reachable()
}

// Network returns the underlying network manager
func (p *Platform) Network() *network.Manager {
	return p.network
}

// Metrics returns the network collectors
func (p *Platform) Metrics() *metrics.Collectors {
	return p.metrics
}

// Cache returns the file cache, nil when disabled
func (p *Platform) Cache() *filecache.Cache {
	return p.cache
}

// Kinds lists the record types the parser understands
func (p *Platform) Kinds() []string {
	return p.parser.Kinds()
}

// SessionToken returns the current session token
func (p *Platform) SessionToken() string {
	return p.client.SessionToken()
}

// SetSessionToken switches the session. The file cache is rescoped and
// in-memory caches are dropped, since they belong to the previous session.
func (p *Platform) SetSessionToken(token string) {
	if token == p.client.SessionToken() {
		return
	}
	p.client.SetSessionToken(token)
	if p.cache != nil {
		p.cache.Scope(token)
	}
	p.invalidateStores()
}

// CreateUser signs up a user and starts their session
func (p *Platform) CreateUser(ctx context.Context, dataPoints ...model.Record) (model.User, error) {
	user, err := p.Users.CreateUser(ctx, dataPoints...)
	if err != nil {
		return model.User{}, err
	}
	p.startSession(user)
	return user, nil
}

// Login exchanges passed verifications for a session
func (p *Platform) Login(ctx context.Context, verifications ...model.Verification) (model.User, error) {
	user, err := p.Users.Login(ctx, verifications...)
	if err != nil {
		return model.User{}, err
	}
	p.startSession(user)
	return user, nil
}

func (p *Platform) startSession(user model.User) {
	if user.UserToken == "" {
		p.logger.Warn().Str("user_id", user.UserID).Msg("Platform returned a user without a session token")
		return
	}
	p.SetSessionToken(user.UserToken)
	p.logger.Info().Str("user_id", user.UserID).Msg("Session started")
}

// Logout ends the session on the platform and clears local state. Local
// state is cleared even when the platform no longer knows the session.
func (p *Platform) Logout(ctx context.Context) error {
	err := p.Users.Logout(ctx)
	if err != nil && !errors.Is(err, network.ErrInvalidSession) {
		return err
	}
	p.clearSession()
	p.logger.Info().Msg("Logged out")
	return nil
}

// Invalidate drops every in-memory and on-disk cache of the session
func (p *Platform) Invalidate() {
	p.invalidateStores()
	if p.cache != nil {
		if err := p.cache.Invalidate(); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to invalidate file cache")
		}
	}
}

func (p *Platform) invalidateStores() {
	p.Users.Invalidate()
	p.Config.Invalidate()
	p.Cards.Invalidate()
	p.Transactions.Invalidate()
	p.Notifications.Invalidate()
	p.Statements.Invalidate()
}

func (p *Platform) clearSession() {
	p.Invalidate()
	p.client.SetSessionToken("")
	if p.cache != nil {
		p.cache.Scope("")
	}
}

// OnSessionExpired registers fn to run whenever the platform rejects the
// session
func (p *Platform) OnSessionExpired(fn func()) {
	p.mu.Lock()
	p.expiredHooks = append(p.expiredHooks, fn)
	p.mu.Unlock()
}

// OnDeprecated registers fn to run whenever the platform reports this
// client version as deprecated
func (p *Platform) OnDeprecated(fn func()) {
	p.mu.Lock()
	p.deprecatedHooks = append(p.deprecatedHooks, fn)
	p.mu.Unlock()
}

// Deprecated reports whether the platform has rejected this client version
func (p *Platform) Deprecated() bool {
	return p.deprecated.Load()
}

func (p *Platform) hooks(list *[]func()) []func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]func(){}, *list...)
}

func (p *Platform) onEvent(e network.Event) {
	switch e {
	case network.EventSessionExpired:
		p.logger.Warn().Msg("Session expired, clearing session state")
		p.clearSession()
		for _, fn := range p.hooks(&p.expiredHooks) {
			fn()
		}
	case network.EventSDKDeprecated:
		if !p.deprecated.Swap(true) {
			p.logger.Error().Msg("This client version is deprecated, please upgrade")
		}
		for _, fn := range p.hooks(&p.deprecatedHooks) {
			fn()
		}
	case network.EventServerMaintenance:
		p.logger.Warn().Int("pending", p.network.Pending()).Msg("Platform is in maintenance")
	case network.EventNetworkUnreachable:
		p.logger.Warn().Int("pending", p.network.Pending()).Msg("Platform is unreachable")
	case network.EventNetworkRestored:
		p.logger.Info().Int("pending", p.network.Pending()).Msg("Platform reachable again")
	}
}
