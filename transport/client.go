package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/cardctl/router"
)

// Client performs authenticated JSON requests against the platform API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	userAgent  string
	sdkVersion string
	opts       clientOptions
	logger     zerolog.Logger

	mu           sync.RWMutex
	sessionToken string
}

// Request describes one API call
type Request struct {
	Method string
	Route  router.Route
	// Body is JSON encoded unless it is already a json.RawMessage or []byte.
	Body any
}

// Response is the raw result of an API call with any status code
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NetworkError wraps failures where no HTTP response was received
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid transport configuration")
)

// New creates a new platform API client
func New(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	o := clientOptions{
		timeout:   DefaultTimeout,
		userAgent: "cardctl",
	}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		if len(o.pins) > 0 {
			tr.TLSClientConfig = pinnedTLSConfig(o.pins)
		}
		httpClient = &http.Client{
			Timeout:   o.timeout,
			Transport: tr,
		}
	}

	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   httpClient,
		userAgent:    o.userAgent,
		sdkVersion:   o.sdkVersion,
		opts:         o,
		logger:       logger,
		sessionToken: o.sessionToken,
	}, nil
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetSessionToken replaces the user session token sent in Authorization
func (c *Client) SetSessionToken(token string) {
	c.mu.Lock()
	c.sessionToken = token
	c.mu.Unlock()
}

// SessionToken returns the current user session token
func (c *Client) SessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionToken
}

// Do performs the request and returns the response for any status code
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	target, err := router.URL(c.baseURL, r.Route)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	body, err := encodeBody(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	if c.opts.limiter != nil {
		if err := c.opts.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", r.Route.String()).
		Msg("Making platform API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Trace().
		Str("method", method).
		Str("path", r.Route.String()).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Msg("Platform API response")

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Api-Key", "Bearer "+c.apiKey)
	if token := c.SessionToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.sdkVersion != "" {
		req.Header.Set("X-SDK-Version", c.sdkVersion)
	}
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}
