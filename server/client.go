package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"drakyn/stream"
)

// Client talks to a running service. It is what the CLI subcommands use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. Requests other than chat are bound
// by timeout; chat runs only by the caller's context.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid service URL: %q", baseURL)
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.getJSON(ctx, "/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Models(ctx context.Context) (*ModelsResponse, error) {
	var resp ModelsResponse
	if err := c.getJSON(ctx, "/models", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Tools(ctx context.Context) (*ToolsResponse, error) {
	var resp ToolsResponse
	if err := c.getJSON(ctx, "/tools", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Runs(ctx context.Context, limit int) (*RunsResponse, error) {
	path := "/v1/runs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp RunsResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat runs the agent without streaming.
func (c *Client) Chat(ctx context.Context, message string, history []HistoryMessage) (*ChatResponse, error) {
	body, err := json.Marshal(ChatRequest{Message: message, History: history})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, c.streamClient(), http.MethodPost, "/v1/agent/chat", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return &out, nil
}

// ChatStream runs the agent and calls onEvent for every streamed event, the
// final done event included.
func (c *Client) ChatStream(ctx context.Context, message string, history []HistoryMessage, onEvent func(stream.Event) error) error {
	body, err := json.Marshal(ChatRequest{Message: message, Stream: true, History: history})
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, c.streamClient(), http.MethodPost, "/v1/agent/chat", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return stream.ReadSSE(resp.Body, onEvent)
}

func (c *Client) streamClient() *http.Client {
	return &http.Client{Transport: c.http.Transport}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, c.http, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach service at %s: %w", c.baseURL, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var e errorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("service returned %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp, nil
}
