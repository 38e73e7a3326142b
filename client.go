package igapi

import (
	"errors"
	"fmt"
	"net/url"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// DefaultBaseURL is the origin every relative request path resolves against.
const DefaultBaseURL = "https://" + apiHost + "/"

// DefaultTimeoutSeconds bounds one call inside the transport.
const DefaultTimeoutSeconds = 30

// HTTPDoer performs one HTTP call. tls_client.HttpClient satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportOptions configures NewHTTPClient.
type TransportOptions struct {
	Logger         tls_client.Logger
	Profile        *profiles.ClientProfile // nil selects AndroidLigerProfile
	TimeoutSeconds int
}

// NewHTTPClient builds the transport every call goes through: the mobile TLS
// profile, the session proxy and cookie jar, and relaxed certificate checks.
// Redirects are followed; non-2xx responses are returned, not raised.
func NewHTTPClient(state *State, opts TransportOptions) (tls_client.HttpClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = tls_client.NewNoopLogger()
	}
	profile := AndroidLigerProfile
	if opts.Profile != nil {
		profile = *opts.Profile
	}
	timeout := opts.TimeoutSeconds
	if timeout <= 0 {
		timeout = DefaultTimeoutSeconds
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(timeout),
		tls_client.WithClientProfile(profile),
		tls_client.WithInsecureSkipVerify(),
		tls_client.WithCookieJar(state.CookieJar),
	}

	proxyURL, err := NormalizeProxyURL(state.ProxyURL)
	if err != nil {
		return nil, err
	}
	if proxyURL != "" {
		options = append(options, tls_client.WithProxyUrl(proxyURL))
	}

	return tls_client.NewHttpClient(logger, options...)
}

// Client signs payloads and sends calls on behalf of one session.
// It is safe for concurrent use as long as the State is not mutated meanwhile.
type Client struct {
	state   *State
	http    HTTPDoer
	baseURL *url.URL
	logger  Logger
	strict  bool

	transport TransportOptions
}

// Option is a functional option for NewClient.
type Option func(*Client) error

// WithHTTPClient replaces the default tls-client transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) error {
		if doer == nil {
			return errors.New("http client must not be nil")
		}
		c.http = doer
		return nil
	}
}

// WithTransportOptions configures the default transport built when no
// WithHTTPClient option is given.
func WithTransportOptions(opts TransportOptions) Option {
	return func(c *Client) error {
		if opts.TimeoutSeconds < 0 {
			return errors.New("timeout must not be negative")
		}
		c.transport = opts
		return nil
	}
}

// WithBaseURL changes the origin relative request paths resolve against.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base url %q must be absolute", raw)
		}
		c.baseURL = u
		return nil
	}
}

// WithLogger sets the per-call logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithStrictStatus makes Send return a KindUnclassified *APIError for non-ok
// responses that carry no known marker. Without it such responses are
// returned as if they had succeeded.
func WithStrictStatus() Option {
	return func(c *Client) error {
		c.strict = true
		return nil
	}
}

// NewClient validates state and returns a Client. Without WithHTTPClient it
// builds the default transport with NewHTTPClient.
func NewClient(state *State, opts ...Option) (*Client, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	base, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		state:   state,
		baseURL: base,
		logger:  NopLogger,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.http == nil {
		topts := c.transport
		if tl, ok := c.logger.(tls_client.Logger); ok && topts.Logger == nil {
			topts.Logger = tl
		}
		hc, err := NewHTTPClient(state, topts)
		if err != nil {
			return nil, fmt.Errorf("create http client: %w", err)
		}
		c.http = hc
	}
	return c, nil
}

// State returns the session state the client reads from.
func (c *Client) State() *State {
	return c.state
}

// BaseURL returns a copy of the origin relative paths resolve against.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}
