package mcp

import (
	"context"

	"drakyn/model"
)

// Registry lists and executes tools on behalf of the agent loop.
type Registry interface {
	ListTools(ctx context.Context) ([]model.ToolDefinition, error)
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
	Close() error
}

// Registry kinds.
const (
	TypeHTTP = "http"
	TypeMCP  = "mcp"
)

// MCP transports.
const (
	TransportStreamableHTTP = "streamable-http"
	TransportSSE            = "sse"
	TransportStdio          = "stdio"
)

// ServerConfig describes one tool server.
type ServerConfig struct {
	Name      string
	Type      string // "http" or "mcp"
	URL       string
	Transport string // MCP only
	Command   string // stdio only
	Args      []string
	Env       map[string]string
	Headers   map[string]string
}
