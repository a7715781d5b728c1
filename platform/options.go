package platform

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/s0up4200/cardctl/reachability"
)

// DefaultProbeInterval is how often the reachability prober dials the host
const DefaultProbeInterval = reachability.DefaultInterval

// Options configures a Platform
type Options struct {
	BaseURL      string
	APIKey       string
	SessionToken string
	SDKVersion   string
	UserAgent    string
	Timeout      time.Duration

	// PinnedKeys are base64 SPKI SHA-256 hashes accepted for the host
	PinnedKeys []string

	// RateLimit in requests per second, zero disables limiting
	RateLimit float64
	RateBurst int

	// MaxPending bounds the replay queue, zero means unbounded
	MaxPending    int
	ProbeInterval time.Duration

	// CacheDir enables the on-disk cache when set
	CacheDir string
	CacheTTL time.Duration

	// Registerer receives the network collectors. Nil leaves them
	// unregistered.
	Registerer prometheus.Registerer

	// HTTPClient replaces the transport's client
	HTTPClient *http.Client
	// Monitor replaces the TCP prober
	Monitor reachability.Monitor
}
