package printone

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL      = "https://api.print.one/"
	defaultVersion      = "v2"
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = time.Second
	defaultPollAttempts = 20
	defaultUserAgent    = "printone-go"
)

// Config is the resolved client configuration handed to a TransportFactory.
type Config struct {
	BaseURL        string
	Version        string
	UserAgent      string
	HTTPClient     *http.Client
	Timeout        time.Duration
	RateLimit      rate.Limit
	RateBurst      int
	Registerer     prometheus.Registerer
	TracerProvider trace.TracerProvider
	PollInterval   time.Duration
	PollAttempts   int
}

// TransportFactory builds the Transport a Client sends its requests through.
type TransportFactory func(apiKey string, cfg Config, logger *slog.Logger) Transport

type options struct {
	cfg       Config
	logger    *slog.Logger
	transport TransportFactory
}

// Option is a function that configures the client.
type Option func(*options)

// WithBaseURL sets a custom root URL for the API. The version segment is appended to it.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.cfg.BaseURL = baseURL
	}
}

// WithVersion sets the API version path segment.
func WithVersion(version string) Option {
	return func(o *options) {
		o.cfg.Version = version
	}
}

// WithHTTPClient sets a custom HTTP client. The default client accepts
// compressed responses.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.cfg.HTTPClient = httpClient
	}
}

// WithTimeout sets the timeout of the default HTTP client.
// It has no effect when WithHTTPClient is also used.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.cfg.Timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.cfg.UserAgent = ua
	}
}

// WithLogger sets the logger that receives one debug line per request.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTransport replaces the HTTP transport, e.g. with a fake in tests.
func WithTransport(factory TransportFactory) Option {
	return func(o *options) {
		o.transport = factory
	}
}

// WithRateLimit paces outgoing requests to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.cfg.RateLimit = rate.Limit(rps)
		o.cfg.RateBurst = burst
	}
}

// WithMetrics registers request metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.cfg.Registerer = reg
	}
}

// WithTracerProvider sets the provider used to trace requests.
// The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.cfg.TracerProvider = tp
	}
}

// WithPollInterval sets the delay between two polling attempts.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.cfg.PollInterval = d
	}
}

// WithPollAttempts sets the default number of polling attempts.
func WithPollAttempts(n int) Option {
	return func(o *options) {
		o.cfg.PollAttempts = n
	}
}

// defaultHTTPClient negotiates compressed responses and decodes them
// transparently.
func defaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: gzhttp.Transport(http.DefaultTransport),
	}
}

// shared is handed to every entity created by a Client. It is never written
// after New returns.
type shared struct {
	transport Transport
	cfg       Config
	logger    *slog.Logger
	client    *Client
}

// Client represents a print.one API client.
type Client struct {
	s *shared
}

// New creates a new print.one client.
func New(apiKey string, opts ...Option) *Client {
	o := &options{
		cfg: Config{
			BaseURL:      defaultBaseURL,
			Version:      defaultVersion,
			UserAgent:    defaultUserAgent,
			Timeout:      defaultTimeout,
			PollInterval: defaultPollInterval,
			PollAttempts: defaultPollAttempts,
		},
		transport: func(apiKey string, cfg Config, logger *slog.Logger) Transport {
			return NewHTTPTransport(apiKey, cfg, logger)
		},
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.cfg.HTTPClient == nil {
		o.cfg.HTTPClient = defaultHTTPClient(o.cfg.Timeout)
	}

	c := &Client{}
	c.s = &shared{
		transport: o.transport(apiKey, o.cfg, o.logger),
		cfg:       o.cfg,
		logger:    o.logger,
		client:    c,
	}

	c.s.logger.Debug("initialized", "base_url", o.cfg.BaseURL, "version", o.cfg.Version)

	return c
}

// Config returns the resolved configuration.
func (c *Client) Config() Config {
	return c.s.cfg
}

// Transport returns the transport requests are sent through.
func (c *Client) Transport() Transport {
	return c.s.transport
}
