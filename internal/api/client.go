package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"hopper/internal/logging"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultUploadTimeout  = 5 * time.Minute
)

// HTTPDoer describes the HTTP client used by the API client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token and the single-flight refresh used
// by the 401 retry path. Refresh receives the token that just failed so
// concurrent callers whose token was already replaced do not trigger a
// second refresh.
type TokenSource interface {
	Token() string
	Refresh(ctx context.Context, stale string) (bool, error)
}

// Client is the request gate for all conversion backend calls. Deadlines
// are applied per request via the context rather than on the HTTP client so
// archive uploads can run longer than ordinary calls.
type Client struct {
	baseURL        string
	http           HTTPDoer
	tokens         TokenSource
	logger         *slog.Logger
	requestTimeout time.Duration
	uploadTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The refresh flow needs
// a client carrying a cookie jar; the default client provides one.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithTimeouts overrides the per-request deadlines. The upload timeout
// covers the archive upload; everything else uses the request timeout.
// A zero value keeps the corresponding default.
func WithTimeouts(request, upload time.Duration) Option {
	return func(c *Client) {
		if request > 0 {
			c.requestTimeout = request
		}
		if upload > 0 {
			c.uploadTimeout = upload
		}
	}
}

// WithLogger attaches a logger for transport-level diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "api")
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url required")
	}

	client := &Client{
		baseURL:        baseURL,
		logger:         logging.NewNop(),
		requestTimeout: defaultRequestTimeout,
		uploadTimeout:  defaultUploadTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.http == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("build cookie jar: %w", err)
		}
		client.http = &http.Client{Jar: jar}
	}
	return client, nil
}

// SetTokenSource wires the token lifecycle into the request gate. Set once
// during startup; the client performs no locking around it.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// requestSpec describes one backend call. The body factory is invoked per
// attempt so the 401 retry can rebuild consumed request bodies.
type requestSpec struct {
	method string
	path   string
	query  url.Values
	body   func() (io.ReadCloser, string, error)
	auth   bool
	upload bool
}

func (c *Client) endpoint(spec requestSpec) string {
	target := c.baseURL + spec.path
	if len(spec.query) > 0 {
		target += "?" + spec.query.Encode()
	}
	return target
}

func (c *Client) attempt(ctx context.Context, spec requestSpec, token string) (*http.Response, error) {
	var body io.ReadCloser
	contentType := ""
	if spec.body != nil {
		var err error
		body, contentType, err = spec.body()
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, c.endpoint(spec), body)
	if err != nil {
		if body != nil {
			body.Close()
		}
		return nil, fmt.Errorf("build request %s %s: %w", spec.method, spec.path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", spec.method, spec.path, err)
	}
	return resp, nil
}

// do runs the request through the gate: fail fast when authentication is
// required but absent, and on a 401 perform exactly one refresh followed by
// one retry.
func (c *Client) do(ctx context.Context, spec requestSpec) (*http.Response, error) {
	token := ""
	if spec.auth {
		if c.tokens == nil {
			return nil, fmt.Errorf("%w: no token source configured", ErrUnauthorized)
		}
		token = c.tokens.Token()
		if token == "" {
			return nil, fmt.Errorf("%w: not logged in", ErrUnauthorized)
		}
	}

	resp, err := c.attempt(ctx, spec, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !spec.auth {
		return resp, nil
	}

	drainAndClose(resp.Body)
	refreshed, refreshErr := c.tokens.Refresh(ctx, token)
	if refreshErr != nil || !refreshed {
		if refreshErr != nil {
			c.logger.Debug("token refresh failed", logging.Error(refreshErr))
		}
		return nil, fmt.Errorf("%w: %s %s", ErrUnauthorized, spec.method, spec.path)
	}

	token = c.tokens.Token()
	if token == "" {
		return nil, fmt.Errorf("%w: %s %s", ErrUnauthorized, spec.method, spec.path)
	}
	c.logger.Debug("retrying after token refresh", logging.String("path", spec.path))
	return c.attempt(ctx, spec, token)
}

// deadline bounds an entire call, including the refresh retry and reading
// the response body.
func (c *Client) deadline(ctx context.Context, spec requestSpec) (context.Context, context.CancelFunc) {
	timeout := c.requestTimeout
	if spec.upload {
		timeout = c.uploadTimeout
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// doJSON executes spec and decodes a 2xx JSON body into out (may be nil).
func (c *Client) doJSON(ctx context.Context, spec requestSpec, out any) error {
	ctx, cancel := c.deadline(ctx, spec)
	defer cancel()

	resp, err := c.do(ctx, spec)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response for %s: %w", spec.path, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return newStatusError(resp.StatusCode, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response for %s: %w", spec.path, err)
	}
	return nil
}

// doStream executes spec and copies a 2xx body into w.
func (c *Client) doStream(ctx context.Context, spec requestSpec, w io.Writer) (int64, error) {
	ctx, cancel := c.deadline(ctx, spec)
	defer cancel()

	resp, err := c.do(ctx, spec)
	if err != nil {
		return 0, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return 0, newStatusError(resp.StatusCode, body)
	}
	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return written, fmt.Errorf("stream response for %s: %w", spec.path, err)
	}
	return written, nil
}

func jsonBody(payload any) func() (io.ReadCloser, string, error) {
	return func() (io.ReadCloser, string, error) {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return io.NopCloser(bytes.NewReader(data)), "application/json", nil
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
