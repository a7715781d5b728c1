package transport

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout is the per-request timeout applied when none is configured
const DefaultTimeout = 180 * time.Second

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout      time.Duration
	httpClient   *http.Client
	userAgent    string
	sdkVersion   string
	pins         []string
	limiter      *rate.Limiter
	sessionToken string
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Pinning and timeout
// options are not applied to a caller-supplied client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithSDKVersion sets the version reported in the X-SDK-Version header.
func WithSDKVersion(version string) Option {
	return func(o *clientOptions) {
		o.sdkVersion = version
	}
}

// WithPinnedKeys enables certificate pinning against base64 encoded
// SHA-256 hashes of the server's SubjectPublicKeyInfo.
func WithPinnedKeys(pins ...string) Option {
	return func(o *clientOptions) {
		o.pins = append(o.pins, pins...)
	}
}

// WithRateLimit caps outgoing requests to rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *clientOptions) {
		if rps <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSessionToken sets the initial user session token.
func WithSessionToken(token string) Option {
	return func(o *clientOptions) {
		o.sessionToken = token
	}
}
