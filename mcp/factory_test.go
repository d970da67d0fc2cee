package mcp

import (
	"context"
	"testing"

	"drakyn/config"
)

func TestServersFromConfig(t *testing.T) {
	cfg := config.Default()
	servers := ServersFromConfig(cfg)
	if len(servers) != 1 {
		t.Fatalf("len(servers) = %d, want 1", len(servers))
	}
	if servers[0].Type != TypeHTTP || servers[0].URL != config.DefaultRegistry {
		t.Errorf("servers[0] = %+v", servers[0])
	}

	cfg.Registry.Servers = []config.RegistryServer{
		{Name: "fs", Type: TypeMCP, Command: "fs-server", Args: []string{"/tmp"}},
		{Name: "web", Type: TypeMCP, URL: "http://localhost:9000/mcp"},
		{Name: "legacy", Type: TypeMCP, URL: "http://localhost:9001/sse", Transport: TransportSSE},
	}
	servers = ServersFromConfig(cfg)

	want := []string{TransportStdio, TransportStreamableHTTP, TransportSSE}
	for i, w := range want {
		if servers[i].Transport != w {
			t.Errorf("servers[%d].Transport = %q, want %q", i, servers[i].Transport, w)
		}
	}
	if servers[0].Command != "fs-server" || len(servers[0].Args) != 1 {
		t.Errorf("servers[0] = %+v", servers[0])
	}
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		servers   []ServerConfig
		wantErr   bool
		wantAggr  bool
	}{
		{"none", nil, true, false},
		{"single", []ServerConfig{{Type: TypeHTTP, URL: "http://localhost:8001"}}, false, false},
		{"several", []ServerConfig{
			{Name: "a", Type: TypeHTTP, URL: "http://localhost:8001"},
			{Name: "b", Type: TypeHTTP, URL: "http://localhost:8002"},
		}, false, true},
		{"unnamed", []ServerConfig{
			{Name: "a", Type: TypeHTTP, URL: "http://localhost:8001"},
			{Type: TypeHTTP, URL: "http://localhost:8002"},
		}, true, false},
		{"duplicate", []ServerConfig{
			{Name: "a", Type: TypeHTTP, URL: "http://localhost:8001"},
			{Name: "a", Type: TypeHTTP, URL: "http://localhost:8002"},
		}, true, false},
		{"unknown type", []ServerConfig{{Type: "grpc"}}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := Connect(ctx, tt.servers)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Connect() error = %v", err)
			}
			defer reg.Close()

			_, isAggr := reg.(*Aggregator)
			if isAggr != tt.wantAggr {
				t.Errorf("aggregator = %v, want %v", isAggr, tt.wantAggr)
			}
		})
	}
}
