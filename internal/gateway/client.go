package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Observer receives one observation per gateway round trip.
type Observer interface {
	ObserveGatewayCall(operation, outcome string, elapsed time.Duration)
}

type Options struct {
	BaseURL  string
	AnonKey  string
	Timeout  time.Duration
	Observer Observer
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to a Supabase-compatible backend: the PostgREST table API
// under /rest/v1 and the GoTrue auth API under /auth/v1.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	observer   Observer

	mu          sync.RWMutex
	accessToken string
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		anonKey:    opts.AnonKey,
		httpClient: httpClient,
		observer:   opts.Observer,
	}
}

// SetAccessToken sets the bearer token used for table requests. An empty
// token falls back to the anon key.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.accessToken != "" {
		return c.accessToken
	}
	return c.anonKey
}

type request struct {
	operation string
	method    string
	path      string
	query     string
	body      any
	bearer    string
	headers   map[string]string
}

func (c *Client) do(ctx context.Context, req request, dest any) error {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s payload: %w", req.operation, err)
		}
		body = bytes.NewReader(payload)
	}

	url := c.baseURL + req.path
	if req.query != "" {
		url += "?" + req.query
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", req.operation, err)
	}

	bearer := req.bearer
	if bearer == "" {
		bearer = c.bearer()
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req.operation, "transport_error", start)
		return &Error{Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(req.operation, "transport_error", start)
		return &Error{Status: resp.StatusCode, Message: err.Error(), cause: err}
	}

	if resp.StatusCode >= 400 {
		c.observe(req.operation, "error", start)
		return decodeError(resp.StatusCode, raw)
	}
	c.observe(req.operation, "ok", start)

	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.operation, err)
	}
	return nil
}

func (c *Client) observe(operation, outcome string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveGatewayCall(operation, outcome, time.Since(start))
}
