package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"drakyn/model"
)

// Version is reported by `drakyn version`, /health and the MCP client handshake.
const Version = "0.3.0"

type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

type AgentSection struct {
	Model                 string        `toml:"model"`
	MaxIterations         int           `toml:"max_iterations"`
	Temperature           float64       `toml:"temperature"`
	MaxTokens             int           `toml:"max_tokens"`
	TopP                  float64       `toml:"top_p"`
	Verbose               bool          `toml:"verbose"`
	SystemPrompt          string        `toml:"system_prompt"`
	ProviderTimeout       time.Duration `toml:"provider_timeout"`
	ToolTimeout           time.Duration `toml:"tool_timeout"`
	ProviderRetries       int           `toml:"provider_retries"`
	ExtractPolicy         string        `toml:"extract_policy"`
	FatalToolErrorClasses []string      `toml:"fatal_tool_error_classes"`
}

// RegistryServer is one tool server behind [[registry.servers]].
type RegistryServer struct {
	Name      string            `toml:"name"`
	Type      string            `toml:"type"`
	URL       string            `toml:"url"`
	Transport string            `toml:"transport"`
	Command   string            `toml:"command"`
	Args      []string          `toml:"args"`
	Env       map[string]string `toml:"env"`
	Headers   map[string]string `toml:"headers"`
}

type RegistryConfig struct {
	RegistryServer
	RefreshInterval time.Duration    `toml:"refresh_interval"`
	Servers         []RegistryServer `toml:"servers"`
}

type CacheConfig struct {
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
}

type StorageConfig struct {
	RecordRuns bool `toml:"record_runs"`
}

type Config struct {
	DataDirectory string           `toml:"data_directory"`
	Server        ServerConfig     `toml:"server"`
	Agent         AgentSection     `toml:"agent"`
	Providers     []ProviderConfig `toml:"providers"`
	Registry      RegistryConfig   `toml:"registry"`
	Cache         CacheConfig      `toml:"cache"`
	Storage       StorageConfig    `toml:"storage"`
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// Addr returns the host:port the HTTP service listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// BaseURL is the address clients (the CLI) use to reach the service.
func (c *Config) BaseURL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Server.Port)
}

// AgentConfig converts the [agent] section into loop settings.
func (c *Config) AgentConfig() model.AgentConfig {
	return model.AgentConfig{
		MaxIterations:         c.Agent.MaxIterations,
		Temperature:           c.Agent.Temperature,
		MaxTokens:             c.Agent.MaxTokens,
		TopP:                  c.Agent.TopP,
		Verbose:               c.Agent.Verbose,
		SystemPrompt:          c.Agent.SystemPrompt,
		ProviderTimeout:       c.Agent.ProviderTimeout,
		ToolTimeout:           c.Agent.ToolTimeout,
		ExtractPolicy:         model.ExtractPolicy(c.Agent.ExtractPolicy),
		FatalToolErrorClasses: c.Agent.FatalToolErrorClasses,
	}
}

// Servers returns the configured tool servers. A bare [registry] table is a
// single server; [[registry.servers]] entries take precedence.
func (c *Config) Servers() []RegistryServer {
	if len(c.Registry.Servers) > 0 {
		return c.Registry.Servers
	}
	if c.Registry.URL == "" && c.Registry.Command == "" {
		return nil
	}
	return []RegistryServer{c.Registry.RegistryServer}
}

// Validate checks ranges and required fields after overrides are applied.
func (c *Config) Validate() error {
	if c.Agent.Model == "" {
		return fmt.Errorf("agent.model is required")
	}
	if err := c.AgentConfig().Validate(); err != nil {
		return fmt.Errorf("invalid [agent] section: %w", err)
	}
	if c.Agent.ProviderRetries < 0 {
		return fmt.Errorf("agent.provider_retries must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if len(c.Servers()) == 0 {
		return fmt.Errorf("no tool registry configured ([registry] url or [[registry.servers]])")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if modelID := os.Getenv("DRAKYN_MODEL"); modelID != "" {
		c.Agent.Model = modelID
	}
	if url := os.Getenv("DRAKYN_REGISTRY_URL"); url != "" {
		c.Registry.URL = url
		c.Registry.Servers = nil
	}
	if dataDir := os.Getenv("DRAKYN_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if port := os.Getenv("DRAKYN_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if redisURL := os.Getenv("DRAKYN_REDIS_URL"); redisURL != "" {
		c.Cache.RedisURL = redisURL
	}
}

func CheckDebug() bool {
	debug := os.Getenv("DRAKYN_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens <dataDir>/debug.log when DRAKYN_DEBUG is set.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain prompts and tool output)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (DRAKYN_DEBUG=%s) ===", os.Getenv("DRAKYN_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// EnableStderrDebugLog routes debug output to stderr (serve --debug).
func EnableStderrDebugLog() {
	Debug = true
	DebugLog = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

// Load reads the config file at path (GetConfigFilePath() when empty),
// creating a commented default on first run, then applies env overrides and
// prepares the data directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	if !FileExists(path) {
		if err := CreateDefaultConfig(path); err != nil {
			return nil, fmt.Errorf("failed to create config: %w", err)
		}
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	return cfg, nil
}
