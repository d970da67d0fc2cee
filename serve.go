package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"drakyn/agent"
	"drakyn/config"
	"drakyn/mcp"
	"drakyn/provider"
	"drakyn/server"
	"drakyn/storage"

	"github.com/gin-gonic/gin"
)

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (default ~/.config/drakyn/config.toml)")
	debug := fs.Bool("debug", false, "log debug output to stderr")
	host := fs.String("host", "", "override server.host")
	port := fs.Int("port", 0, "override server.port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	if *debug {
		config.EnableStderrDebugLog()
	} else {
		config.InitDebugLog(cfg.DataDir())
		gin.SetMode(gin.ReleaseMode)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	prov, err := provider.FromConfig(cfg)
	if err != nil {
		return err
	}

	registry, err := mcp.Connect(ctx, mcp.ServersFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to capability registry: %w", err)
	}
	defer registry.Close()

	var store mcp.SnapshotStore
	if cfg.Cache.RedisURL != "" {
		rdb, err := mcp.DialRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: tool snapshot cache disabled: %v\n", err)
		} else {
			defer rdb.Close()
			store = mcp.NewRedisStore(rdb, snapshotName(cfg), cfg.Cache.TTL)
		}
	}

	tools := mcp.NewSnapshot(registry, store)
	if err := tools.Refresh(ctx); err != nil {
		// Runs still start; the periodic refresh keeps trying.
		fmt.Fprintf(os.Stderr, "Warning: capability registry unavailable: %v\n", err)
	}
	go tools.Run(ctx, cfg.Registry.RefreshInterval)

	orch := agent.New(prov, tools,
		agent.WithConfig(cfg.AgentConfig()),
		agent.WithToolSource(tools),
	)

	var runs *storage.RunStorage
	if cfg.Storage.RecordRuns {
		runs, err = storage.NewRunStorage(cfg.DataDir())
		if err != nil {
			return fmt.Errorf("failed to open run journal: %w", err)
		}
		defer runs.Close()
	}

	srv := server.New(server.Deps{
		Config:   cfg,
		Agent:    orch,
		Provider: prov,
		Tools:    tools,
		Runs:     runs,
		Catalog:  provider.InitializeProviders(cfg),
	})

	backend := "unknown"
	if kind, _, err := provider.ParseModelID(cfg.Agent.Model); err == nil {
		backend = config.ProviderDisplayName(string(kind))
	}
	fmt.Printf("drakyn %s listening on %s (model %s via %s, %d tools)\n",
		config.Version, cfg.BaseURL(), cfg.Agent.Model, backend, len(tools.Tools()))
	return srv.Start(ctx)
}

// snapshotName keys the shared tool snapshot by registry so instances pointed
// at different registries don't share a catalogue.
func snapshotName(cfg *config.Config) string {
	servers := cfg.Servers()
	if len(servers) == 1 {
		if servers[0].URL != "" {
			return servers[0].URL
		}
		return servers[0].Command
	}
	names := make([]string, 0, len(servers))
	for _, s := range servers {
		names = append(names, s.Name)
	}
	return strings.Join(names, ",")
}
