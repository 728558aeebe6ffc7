package coursedex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client is the coursedex API client entry point.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	retry   RetryConfig
	http    *http.Client
	breaker *breaker
	obs     *observer

	mu       sync.Mutex
	inflight map[string]*inflightEntry
}

type inflightEntry struct {
	cancel context.CancelCauseFunc
}

// New creates a coursedex API client.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   cfg.apiKey,
		timeout:  cfg.timeout,
		retry:    cfg.retry.withDefaults(),
		http:     hc,
		breaker:  newBreaker(cfg.breaker),
		obs:      obs,
		inflight: make(map[string]*inflightEntry),
	}, nil
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() BreakerState {
	return c.breaker.State()
}

// requestKeyCtx carries the supersede key through the context.
type requestKeyCtx struct{}

// WithRequestKey tags the context with a request key. A subsequent request
// issued with the same key cancels this one with ErrRequestSuperseded.
func WithRequestKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, requestKeyCtx{}, key)
}

// CancelRequest cancels the in-flight request registered under key, if any.
func (c *Client) CancelRequest(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.inflight[key]; ok {
		entry.cancel(context.Canceled)
		delete(c.inflight, key)
	}
}

// CancelAllRequests cancels every keyed in-flight request.
func (c *Client) CancelAllRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.inflight {
		entry.cancel(context.Canceled)
		delete(c.inflight, key)
	}
}

// beginRequest registers the request under its context key, canceling any
// in-flight predecessor with the same key. The returned func unregisters.
func (c *Client) beginRequest(ctx context.Context) (context.Context, func()) {
	key, _ := ctx.Value(requestKeyCtx{}).(string)
	if key == "" {
		return ctx, func() {}
	}

	reqCtx, cancel := context.WithCancelCause(ctx)
	entry := &inflightEntry{cancel: cancel}

	c.mu.Lock()
	if prev, ok := c.inflight[key]; ok {
		prev.cancel(ErrRequestSuperseded)
	}
	c.inflight[key] = entry
	c.mu.Unlock()

	return reqCtx, func() {
		cancel(nil)
		c.mu.Lock()
		if c.inflight[key] == entry {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
	}
}

// response is a successful (2xx) HTTP reply.
type response struct {
	status int
	header http.Header
	body   []byte
}

// do executes one API call with breaker, timeout, key cancellation and,
// for GET, automatic retries. newBody must return a fresh reader per call.
func (c *Client) do(
	ctx context.Context, op, method, path, contentType string,
	newBody func() io.Reader,
) (*response, error) {
	start := time.Now()

	reqCtx, done := c.beginRequest(ctx)
	defer done()

	url := c.baseURL + path

	var resp *response
	operation := func() error {
		r, err := c.attempt(reqCtx, method, url, contentType, newBody)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	var err error
	if method == http.MethodGet {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = c.retry.InitialInterval
		bo.MaxElapsedTime = 0
		err = backoff.Retry(operation,
			backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.retry.MaxAttempts-1)), reqCtx))
	} else {
		err = operation()
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}

	c.obs.observe(op, start, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// retryable reports whether a failed attempt may be repeated. Client-side
// API errors, open circuits and canceled requests are final.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	if errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, ErrRequestSuperseded) ||
		errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// attempt performs a single HTTP round trip and feeds the breaker.
func (c *Client) attempt(
	ctx context.Context, method, url, contentType string,
	newBody func() io.Reader,
) (*response, error) {
	if !c.breaker.allow() {
		return nil, ErrCircuitOpen
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if newBody != nil {
		body = newBody()
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("coursedex: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, ErrRequestSuperseded) {
			return nil, ErrRequestSuperseded
		}
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("coursedex: %s %s: %w", method, url, context.Canceled)
		}
		c.breaker.recordFailure()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, method, url)
		}
		return nil, fmt.Errorf("coursedex: %s %s: %w", method, url, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.breaker.recordFailure()
		return nil, fmt.Errorf("coursedex: read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		apiErr := &APIError{
			Status:  httpResp.StatusCode,
			Code:    "unknown",
			Message: http.StatusText(httpResp.StatusCode),
			body:    data,
		}
		var envelope struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Code != "" {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Message
		}
		// A 4xx means the server is healthy; only 5xx trips the breaker.
		if apiErr.Retryable() {
			c.breaker.recordFailure()
		} else {
			c.breaker.recordSuccess()
		}
		return nil, apiErr
	}

	c.breaker.recordSuccess()
	return &response{
		status: httpResp.StatusCode,
		header: httpResp.Header,
		body:   data,
	}, nil
}

// doJSON executes a JSON-in JSON-out API call.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var newBody func() io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("coursedex: encode request: %w", err)
		}
		newBody = func() io.Reader { return bytes.NewReader(payload) }
		contentType = "application/json"
	}

	resp, err := c.do(ctx, op, method, path, contentType, newBody)
	if err != nil {
		return err
	}
	if out != nil {
		return decodeJSON(resp.body, out)
	}
	return nil
}

func decodeJSON(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("coursedex: decode response: %w", err)
	}
	return nil
}
