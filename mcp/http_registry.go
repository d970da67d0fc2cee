package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"drakyn/config"
	"drakyn/model"
)

// HTTPRegistry talks to a registry service exposing GET /tools,
// POST /execute and GET /health.
type HTTPRegistry struct {
	baseURL string
	headers map[string]string
	client  *http.Client
}

type executeRequest struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

type executeResponse struct {
	Result     any    `json:"result"`
	Error      string `json:"error,omitempty"`
	ErrorClass string `json:"error_class,omitempty"`
}

type toolsResponse struct {
	Tools []model.ToolDefinition `json:"tools"`
}

// NewHTTPRegistry creates a client for the registry at baseURL. Per-call
// deadlines come from the caller's context.
func NewHTTPRegistry(baseURL string, headers map[string]string) (*HTTPRegistry, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("registry URL is required")
	}
	return &HTTPRegistry{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// URL returns the registry base URL.
func (r *HTTPRegistry) URL() string {
	return r.baseURL
}

// ListTools fetches the tool catalogue. Both {"tools": [...]} and a bare
// array are accepted.
func (r *HTTPRegistry) ListTools(ctx context.Context) ([]model.ToolDefinition, error) {
	body, _, err := r.do(ctx, http.MethodGet, "/tools", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	var wrapped toolsResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Tools != nil {
		return wrapped.Tools, nil
	}

	var tools []model.ToolDefinition
	if err := json.Unmarshal(body, &tools); err != nil {
		return nil, fmt.Errorf("failed to parse tools JSON: %w", err)
	}
	return tools, nil
}

// Execute runs a tool. A registry-reported error becomes a *model.ToolError;
// transport failures are returned as-is.
func (r *HTTPRegistry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	payload, err := json.Marshal(executeRequest{Tool: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}

	body, status, err := r.do(ctx, http.MethodPost, "/execute", payload)
	if err != nil {
		return nil, err
	}

	var resp executeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse execute response: %w", err)
	}
	if resp.Error == "" && status >= 400 {
		resp.Error = fmt.Sprintf("HTTP %d: %s", status, strings.TrimSpace(string(body)))
	}
	if resp.Error != "" {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[MCP] Tool %s reported error: %s", name, resp.Error)
		}
		return nil, &model.ToolError{Tool: name, Class: resp.ErrorClass, Message: resp.Error}
	}
	return resp.Result, nil
}

// Health probes GET /health.
func (r *HTTPRegistry) Health(ctx context.Context) error {
	_, _, err := r.do(ctx, http.MethodGet, "/health", nil)
	return err
}

func (r *HTTPRegistry) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

func (r *HTTPRegistry) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	// /execute reports tool failures in the body, sometimes with a non-2xx
	// status. Let the caller decode those.
	if resp.StatusCode >= 400 && !(path == "/execute" && json.Valid(body)) {
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, resp.StatusCode, nil
}
