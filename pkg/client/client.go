// Package client is a typed Go client for the LearnEdu API. It mirrors the
// behavior the web frontend relies on: a short-lived read cache for GET
// requests, deduplication of identical in-flight GETs, cache invalidation
// on any write, and a hard request timeout.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout  = 12 * time.Second
	defaultCacheTTL = 60 * time.Second
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API Error: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API Error: %d", e.StatusCode)
}

// envelope mirrors the server's response shape.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error,omitempty"`
}

type cachedResponse struct {
	body      []byte
	expiresAt time.Time
}

// inflightCall lets concurrent identical GETs share one round trip.
type inflightCall struct {
	done chan struct{}
	body []byte
	err  error
}

// Client is a LearnEdu API client. It is safe for concurrent use.
type Client struct {
	http *resty.Client

	mu       sync.Mutex
	token    string
	cache    map[string]cachedResponse
	inflight map[string]*inflightCall
	ttl      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithCacheTTL overrides the default GET cache TTL.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) { c.ttl = d }
}

// New creates a Client for the given base URL, e.g. "https://api.example.com".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Content-Type", "application/json"),
		cache:    make(map[string]cachedResponse),
		inflight: make(map[string]*inflightCall),
		ttl:      defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs the bearer token used for subsequent requests.
// Changing the token also drops the cache: entries are token-scoped.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		c.cache = make(map[string]cachedResponse)
	}
	c.token = token
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Get performs a cached GET. Identical concurrent calls share one request.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	key := path + "|" + c.currentToken()

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		c.mu.Unlock()
		return decodeData(cached.body, out)
	}
	delete(c.cache, key)

	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if call.err != nil {
			return call.err
		}
		return decodeData(call.body, out)
	}

	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	body, err := c.do(ctx, http.MethodGet, path, nil)

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil {
		c.cache[key] = cachedResponse{body: body, expiresAt: time.Now().Add(c.ttl)}
	}
	c.mu.Unlock()

	call.body, call.err = body, err
	close(call.done)

	if err != nil {
		return err
	}
	return decodeData(body, out)
}

// Post performs a POST and invalidates the read cache.
func (c *Client) Post(ctx context.Context, path string, payload, out interface{}) error {
	return c.write(ctx, http.MethodPost, path, payload, out)
}

// Put performs a PUT and invalidates the read cache.
func (c *Client) Put(ctx context.Context, path string, payload, out interface{}) error {
	return c.write(ctx, http.MethodPut, path, payload, out)
}

// Delete performs a DELETE and invalidates the read cache.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.write(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) write(ctx context.Context, method, path string, payload, out interface{}) error {
	body, err := c.do(ctx, method, path, payload)

	// Any write, even a failed one, may have changed server state.
	c.mu.Lock()
	c.cache = make(map[string]cachedResponse)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	return decodeData(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if token := c.currentToken(); token != "" {
		req.SetAuthToken(token)
	}
	if payload != nil {
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}
	return body, nil
}

// decodeData unwraps the envelope and unmarshals its data field.
func decodeData(body []byte, out interface{}) error {
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
