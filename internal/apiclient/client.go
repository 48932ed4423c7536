// Package apiclient talks to the atlas REST API.
//
// Every record crossing the boundary goes through an explicit field table
// (see wire.go) between the snake_case wire format and the canonical types
// in pkg/catalog. Bearer tokens come from an injected session; a 401 on an
// authenticated call destroys that session and fires the unauthorized hook.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"uia-atlas/atlas-portal/internal/session"
)

const defaultTimeout = 30 * time.Second

// Client is safe for concurrent use.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	session        *session.Session
	logger         *zap.Logger
	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUnauthorizedHandler registers the hook run after a 401 tore the
// session down, typically a redirect to the login entry point.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    sess,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// admin calls need a token and tear the session down on 401
	auth bool
	// login never carries the current token
	anonymous bool
}

type errorBody struct {
	Error  string            `json:"error"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	token := ""
	if c.session != nil && !req.anonymous {
		token = c.session.Token()
	}
	if req.auth && token == "" {
		c.unauthorized()
		return nil, fmt.Errorf("%w: not signed in", ErrUnauthorized)
	}

	u := *c.baseURL
	u.Path = u.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, &APIError{Method: req.method, Path: req.path, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("API request failed", zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		return nil, &APIError{Method: req.method, Path: req.path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Method: req.method, Path: req.path, StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.Debug("API request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	return nil, c.statusError(req, resp.StatusCode, data, token != "")
}

func (c *Client) statusError(req request, status int, data []byte, hadToken bool) error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	msg := eb.Error
	if msg == "" {
		msg = eb.Detail
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized:
		if hadToken || req.auth {
			c.unauthorized()
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Message: msg, Fields: eb.Fields}
	case http.StatusConflict:
		return &APIError{Method: req.method, Path: req.path, StatusCode: status, Message: msg, Err: ErrConflict}
	}
	return &APIError{Method: req.method, Path: req.path, StatusCode: status, Message: msg}
}

func (c *Client) unauthorized() {
	if c.session != nil {
		if err := c.session.Destroy(); err != nil {
			c.logger.Warn("Failed to clear session", zap.Error(err))
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func decodeInto[T any](sch *schema[T], data []byte) (*T, error) {
	var out T
	if err := sch.decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
