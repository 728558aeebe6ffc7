package coursedex

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultInterval    = 200 * time.Millisecond
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// RetryConfig controls automatic retries of idempotent requests.
type RetryConfig struct {
	// MaxAttempts is the total attempt count including the first. Default: 3.
	MaxAttempts int
	// InitialInterval is the first backoff delay. Default: 200ms.
	InitialInterval time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = defaultInterval
	}
	return c
}

type clientConfig struct {
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	retry      RetryConfig
	breaker    BreakerConfig
	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithTimeout sets the per-request timeout. Default: 30 seconds.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithRetry configures retries for idempotent (GET) requests.
// Non-GET requests are never retried.
func WithRetry(cfg RetryConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.retry = cfg
	})
}

// WithBreaker configures the client-wide circuit breaker.
func WithBreaker(cfg BreakerConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.breaker = cfg
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (request counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
