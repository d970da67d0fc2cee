package mcp

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"drakyn/config"
	"drakyn/model"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const protocolVersion = "2025-06-18"

// MCPRegistry executes tools on a Model Context Protocol server.
type MCPRegistry struct {
	name   string
	client *client.Client
	cmd    *exec.Cmd
}

// NewMCPRegistry connects to the server described by cfg and performs the
// initialize handshake.
func NewMCPRegistry(ctx context.Context, cfg ServerConfig) (*MCPRegistry, error) {
	var (
		mcpClient *client.Client
		cmd       *exec.Cmd
		err       error
	)

	switch cfg.Transport {
	case TransportStdio:
		mcpClient, cmd, err = createLocalClient(cfg)
	case TransportSSE:
		mcpClient, err = createSSEClient(ctx, cfg)
	case "", TransportStreamableHTTP:
		mcpClient, err = createStreamableHttpClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown MCP transport: %s", cfg.Transport)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server %s: %w", cfg.Name, err)
	}

	initReq := mcptypes.InitializeRequest{
		Params: mcptypes.InitializeParams{
			ProtocolVersion: protocolVersion,
			Capabilities:    mcptypes.ClientCapabilities{},
			ClientInfo: mcptypes.Implementation{
				Name:    "drakyn",
				Version: config.Version,
			},
		},
	}
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("failed to initialize MCP server %s: %w", cfg.Name, err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Connected to '%s' over %s", cfg.Name, transportName(cfg.Transport))
	}

	return &MCPRegistry{name: cfg.Name, client: mcpClient, cmd: cmd}, nil
}

func (r *MCPRegistry) ListTools(ctx context.Context) ([]model.ToolDefinition, error) {
	result, err := r.client.ListTools(ctx, mcptypes.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools for %s: %w", r.name, err)
	}
	return ConvertMCPTools(result.Tools), nil
}

// Execute calls a tool. Results flagged IsError become *model.ToolError.
func (r *MCPRegistry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	result, err := r.client.CallTool(ctx, mcptypes.CallToolRequest{
		Params: mcptypes.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, err
	}
	if result.IsError {
		return nil, &model.ToolError{Tool: name, Message: resultErrorText(result)}
	}
	return ConvertCallToolResult(result), nil
}

// Close shuts the client down. For stdio servers this also stops the child
// process.
func (r *MCPRegistry) Close() error {
	err := r.client.Close()
	switch {
	case r.cmd != nil && r.cmd.Process != nil && config.DebugLog != nil:
		config.DebugLog.Printf("[MCP] Stopped local server '%s' (PID %d)", r.name, r.cmd.Process.Pid)
	}
	return err
}

func createStreamableHttpClient(ctx context.Context, cfg ServerConfig) (*client.Client, error) {
	var opts []transport.StreamableHTTPCOption
	if len(cfg.Headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(cfg.Headers))
	}

	mcpClient, err := client.NewStreamableHttpClient(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}

	// Start HTTP transport (required before Initialize/ListTools)
	if err := mcpClient.GetTransport().Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start HTTP transport: %w", err)
	}
	return mcpClient, nil
}

func createSSEClient(ctx context.Context, cfg ServerConfig) (*client.Client, error) {
	var opts []transport.ClientOption
	if len(cfg.Headers) > 0 {
		opts = append(opts, transport.WithHeaders(cfg.Headers))
	}

	mcpClient, err := client.NewSSEMCPClient(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}

	// Start SSE transport (required before Initialize/ListTools)
	if err := mcpClient.GetTransport().Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start SSE transport: %w", err)
	}
	return mcpClient, nil
}

func createLocalClient(cfg ServerConfig) (*client.Client, *exec.Cmd, error) {
	if err := CheckCommand(cfg.Command); err != nil {
		return nil, nil, err
	}
	if config.DebugLog != nil {
		rt := DetectRuntime(context.Background(), cfg.Command)
		config.DebugLog.Printf("[MCP] Runtime for '%s': path=%s version=%s %s", cfg.Name, rt.Path, rt.Version, rt.Error)
	}

	var capturedCmd *exec.Cmd
	cmdFunc := func(ctx context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
		cmd := exec.CommandContext(ctx, command, args...)
		cmd.Env = env
		capturedCmd = cmd
		return cmd, nil
	}

	mcpClient, err := client.NewStdioMCPClientWithOptions(
		cfg.Command,
		envList(cfg.Env),
		cfg.Args,
		transport.WithCommandFunc(cmdFunc),
	)
	if err != nil {
		return nil, nil, err
	}

	if capturedCmd != nil && capturedCmd.Process != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Started local server '%s' with PID %d", cfg.Name, capturedCmd.Process.Pid)
	}
	return mcpClient, capturedCmd, nil
}

func envList(extra map[string]string) []string {
	// Start with the current environment to preserve PATH and friends
	env := os.Environ()
	for k, v := range extra {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}

func transportName(t string) string {
	if t == "" {
		return TransportStreamableHTTP
	}
	return t
}
