package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token for outbound calls.
type TokenSource interface {
	Token() (string, bool)
}

// Client is the thin request/response wrapper around the attendance REST API.
// Every call carries the current token; a 401 from any call fires the unauthorized handler.
// Calls are never retried.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
	logger         *slog.Logger
}

type Option func(*Client)

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler registers the global reaction to a 401.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithHTTPClient replaces the transport; its Timeout is overridden by NewClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for baseURL with a fixed timeout per call.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = timeout

	return c, nil
}

// SetUnauthorizedHandler replaces the 401 handler after construction.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// SetTokenSource replaces the token source after construction.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request and decodes the envelope's data into out when present.
// out may be nil. A success=false envelope is an error regardless of HTTP status.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", path, "error", err, "duration", time.Since(start))
		return transportError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"), "duration", time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		env, _ := decodeEnvelope(raw)
		eb := env.errorBody()
		return &Error{Kind: KindAuth, StatusCode: resp.StatusCode, Code: eb.Code, Message: nonEmpty(eb.Message, "unauthorized")}
	}

	env, decodeErr := decodeEnvelope(raw)
	if resp.StatusCode >= 400 || (decodeErr == nil && !env.Success) {
		return statusError(resp.StatusCode, env)
	}
	if decodeErr != nil {
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "malformed response", Err: decodeErr}
	}

	if out == nil || !env.hasData() {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "malformed response data", Err: err}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// Download streams a non-JSON resource such as an export into w.
// Error responses are still read as envelopes.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		env, _ := decodeEnvelope(raw)
		e := statusError(resp.StatusCode, env)
		if resp.StatusCode == http.StatusUnauthorized {
			e.Kind = KindAuth
		}
		return 0, e
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, transportError(err)
	}
	return n, nil
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		return env, errors.New("empty response body")
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, err
	}
	return env, nil
}

func statusError(status int, env Envelope) *Error {
	eb := env.errorBody()
	e := &Error{StatusCode: status, Code: eb.Code, Message: eb.Message, Details: eb.Details}

	switch {
	case status >= 500:
		e.Kind = KindServer
	case status == http.StatusUnprocessableEntity, eb.Code == "VALIDATION_ERROR", len(eb.Details) > 0:
		e.Kind = KindValidation
	default:
		e.Kind = KindBusiness
	}
	if e.Message == "" {
		e.Message = nonEmpty(http.StatusText(status), "request failed")
	}
	return e
}

func transportError(err error) *Error {
	e := &Error{Kind: KindNetwork, Message: "request did not complete", Err: err}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) && netErr.Timeout() {
		e.Timeout = true
		e.Message = "request timed out"
	}
	return e
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
