package mcp

import (
	"context"
	"fmt"

	"drakyn/config"
)

// NewRegistry builds the registry for one server.
func NewRegistry(ctx context.Context, cfg ServerConfig) (Registry, error) {
	switch cfg.Type {
	case "", TypeHTTP:
		return NewHTTPRegistry(cfg.URL, cfg.Headers)
	case TypeMCP:
		return NewMCPRegistry(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown registry type: %s", cfg.Type)
	}
}

// Connect builds a registry for servers. A single server is used directly;
// several are merged behind an Aggregator with namespaced tool names.
func Connect(ctx context.Context, servers []ServerConfig) (Registry, error) {
	switch len(servers) {
	case 0:
		return nil, fmt.Errorf("no tool servers configured")
	case 1:
		return NewRegistry(ctx, servers[0])
	}

	registries := make(map[string]Registry, len(servers))
	for _, cfg := range servers {
		if cfg.Name == "" {
			closeAll(registries)
			return nil, fmt.Errorf("tool server name is required when more than one server is configured")
		}
		if _, dup := registries[cfg.Name]; dup {
			closeAll(registries)
			return nil, fmt.Errorf("duplicate tool server name: %s", cfg.Name)
		}
		r, err := NewRegistry(ctx, cfg)
		if err != nil {
			closeAll(registries)
			return nil, err
		}
		registries[cfg.Name] = r
	}
	return NewAggregator(registries), nil
}

func closeAll(registries map[string]Registry) {
	for _, r := range registries {
		r.Close()
	}
}

// ServersFromConfig converts the [registry] section into server configs.
func ServersFromConfig(cfg *config.Config) []ServerConfig {
	entries := cfg.Servers()
	servers := make([]ServerConfig, 0, len(entries))
	for _, e := range entries {
		transport := e.Transport
		if e.Type == TypeMCP && transport == "" {
			if e.Command != "" {
				transport = TransportStdio
			} else {
				transport = TransportStreamableHTTP
			}
		}
		servers = append(servers, ServerConfig{
			Name:      e.Name,
			Type:      e.Type,
			URL:       e.URL,
			Transport: transport,
			Command:   e.Command,
			Args:      e.Args,
			Env:       e.Env,
			Headers:   e.Headers,
		})
	}
	return servers
}
