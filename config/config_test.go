package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplateMatchesDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, GenerateConfigTemplate()))
	if err != nil {
		t.Fatalf("LoadFile(template) error = %v", err)
	}
	def := Default()

	if cfg.DataDirectory != def.DataDirectory {
		t.Errorf("DataDirectory = %q, want %q", cfg.DataDirectory, def.DataDirectory)
	}
	if cfg.Server.Host != def.Server.Host || cfg.Server.Port != def.Server.Port {
		t.Errorf("Server = %+v, want %+v", cfg.Server, def.Server)
	}
	if cfg.Agent.Model != def.Agent.Model ||
		cfg.Agent.MaxIterations != def.Agent.MaxIterations ||
		cfg.Agent.Temperature != def.Agent.Temperature ||
		cfg.Agent.MaxTokens != def.Agent.MaxTokens ||
		cfg.Agent.TopP != def.Agent.TopP ||
		cfg.Agent.ExtractPolicy != def.Agent.ExtractPolicy {
		t.Errorf("Agent = %+v, want %+v", cfg.Agent, def.Agent)
	}
	if cfg.Agent.ProviderTimeout != 120*time.Second || cfg.Agent.ToolTimeout != 30*time.Second {
		t.Errorf("timeouts = %s / %s", cfg.Agent.ProviderTimeout, cfg.Agent.ToolTimeout)
	}
	if len(cfg.Providers) != len(def.Providers) {
		t.Fatalf("len(Providers) = %d, want %d", len(cfg.Providers), len(def.Providers))
	}
	for i := range def.Providers {
		if cfg.Providers[i] != def.Providers[i] {
			t.Errorf("Providers[%d] = %+v, want %+v", i, cfg.Providers[i], def.Providers[i])
		}
	}
	if cfg.Registry.URL != def.Registry.URL || cfg.Registry.Type != def.Registry.Type || cfg.Registry.Name != def.Registry.Name {
		t.Errorf("Registry = %+v, want %+v", cfg.Registry, def.Registry)
	}
	if cfg.Registry.RefreshInterval != def.Registry.RefreshInterval {
		t.Errorf("RefreshInterval = %s, want %s", cfg.Registry.RefreshInterval, def.Registry.RefreshInterval)
	}
	if cfg.Cache.TTL != def.Cache.TTL || cfg.Cache.RedisURL != "" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if !cfg.Storage.RecordRuns {
		t.Error("RecordRuns should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("template config should validate: %v", err)
	}
}

func TestLoadFilePartial(t *testing.T) {
	path := writeConfig(t, `
[agent]
model = "ollama/qwen2.5:7b"
max_iterations = 8
tool_timeout = "5s"

[registry]
url = "http://tools:9000"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Agent.Model != "ollama/qwen2.5:7b" || cfg.Agent.MaxIterations != 8 {
		t.Errorf("Agent = %+v", cfg.Agent)
	}
	if cfg.Agent.ToolTimeout != 5*time.Second {
		t.Errorf("ToolTimeout = %s, want 5s", cfg.Agent.ToolTimeout)
	}
	if cfg.Agent.Temperature != 0.7 {
		t.Errorf("Temperature should keep default, got %g", cfg.Agent.Temperature)
	}
	if len(cfg.Providers) != len(DefaultProviders()) {
		t.Errorf("providers should keep defaults, got %d", len(cfg.Providers))
	}
	if cfg.Registry.URL != "http://tools:9000" || cfg.Registry.Type != "http" {
		t.Errorf("Registry = %+v", cfg.Registry)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	if _, err := LoadFile(writeConfig(t, "[agent\nmodel=")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadCreatesDefaultAndAppliesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	dataDir := filepath.Join(dir, "data")

	t.Setenv("DRAKYN_DATA_DIR", dataDir)
	t.Setenv("DRAKYN_MODEL", "vllm/Qwen/Qwen2.5-7B-Instruct")
	t.Setenv("DRAKYN_PORT", "9100")
	t.Setenv("DRAKYN_REGISTRY_URL", "http://registry:8001")
	t.Setenv("DRAKYN_REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !FileExists(path) {
		t.Error("Load should create the default config file")
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		t.Fatalf("data dir not created: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("data dir perms = %o, want 700", info.Mode().Perm())
	}

	if cfg.Agent.Model != "vllm/Qwen/Qwen2.5-7B-Instruct" {
		t.Errorf("Model = %q", cfg.Agent.Model)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Registry.URL != "http://registry:8001" {
		t.Errorf("Registry.URL = %q", cfg.Registry.URL)
	}
	if cfg.Cache.RedisURL != "redis://cache:6379/1" {
		t.Errorf("RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.DataDir() != dataDir {
		t.Errorf("DataDir() = %q, want %q", cfg.DataDir(), dataDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"no model", func(c *Config) { c.Agent.Model = "" }, true},
		{"too many iterations", func(c *Config) { c.Agent.MaxIterations = 21 }, true},
		{"zero iterations", func(c *Config) { c.Agent.MaxIterations = 0 }, true},
		{"temperature too high", func(c *Config) { c.Agent.Temperature = 2.5 }, true},
		{"top_p too high", func(c *Config) { c.Agent.TopP = 1.5 }, true},
		{"zero max tokens", func(c *Config) { c.Agent.MaxTokens = 0 }, true},
		{"bad extract policy", func(c *Config) { c.Agent.ExtractPolicy = "middle" }, true},
		{"negative retries", func(c *Config) { c.Agent.ProviderRetries = -1 }, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"no registry", func(c *Config) { c.Registry.URL = "" }, true},
		{"servers only", func(c *Config) {
			c.Registry.URL = ""
			c.Registry.Servers = []RegistryServer{{Name: "fs", Type: "mcp", Transport: "stdio", Command: "fs-server"}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServers(t *testing.T) {
	cfg := Default()
	servers := cfg.Servers()
	if len(servers) != 1 || servers[0].URL != DefaultRegistry {
		t.Fatalf("Servers() = %+v", servers)
	}

	cfg.Registry.Servers = []RegistryServer{{Name: "a"}, {Name: "b"}}
	if got := cfg.Servers(); len(got) != 2 || got[0].Name != "a" {
		t.Errorf("Servers() = %+v", got)
	}
}

func TestAgentConfig(t *testing.T) {
	cfg := Default()
	cfg.Agent.FatalToolErrorClasses = []string{"permission_denied"}
	cfg.Agent.ExtractPolicy = "last"

	ac := cfg.AgentConfig()
	if ac.MaxIterations != 5 || ac.MaxTokens != 512 {
		t.Errorf("AgentConfig() = %+v", ac)
	}
	if !ac.IsFatalToolClass("permission_denied") {
		t.Error("fatal classes not carried over")
	}
	if ac.ExtractPolicy != "last" {
		t.Errorf("ExtractPolicy = %q", ac.ExtractPolicy)
	}
}

func TestAPIKey(t *testing.T) {
	cfg := Default()
	cfg.Providers = append(cfg.Providers, ProviderConfig{ID: "gollm", APIKeyEnv: "DRAKYN_TEST_GROQ_KEY"})

	t.Setenv("ANTHROPIC_API_KEY", "ant-123")
	t.Setenv("DRAKYN_TEST_GROQ_KEY", "groq-456")
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		id   string
		want string
	}{
		{"anthropic", "ant-123"},
		{"gollm", "groq-456"},
		{"openai", ""},
		{"ollama", ""},
	}
	for _, tt := range tests {
		if got := cfg.APIKey(tt.id); got != tt.want {
			t.Errorf("APIKey(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestProviderSettings(t *testing.T) {
	cfg := &Config{Providers: []ProviderConfig{{ID: "ollama", BaseURL: "http://gpu:11434"}, {ID: "openai"}}}

	if got := cfg.ProviderSettings("ollama").BaseURL; got != "http://gpu:11434" {
		t.Errorf("ollama BaseURL = %q", got)
	}
	if got := cfg.ProviderSettings("openai").BaseURL; got != "https://api.openai.com/v1" {
		t.Errorf("openai BaseURL should fall back to default, got %q", got)
	}
	if got := cfg.ProviderSettings("vllm").BaseURL; got != "http://127.0.0.1:8002/v1" {
		t.Errorf("unconfigured vllm BaseURL = %q", got)
	}
}

func TestProviderDisplayName(t *testing.T) {
	if got := ProviderDisplayName("vllm"); got != "vLLM" {
		t.Errorf("vllm = %q", got)
	}
	if got := ProviderDisplayName("custom"); got != "custom" {
		t.Errorf("unknown IDs should pass through, got %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("DRAKYN_TEST_DIR", "/srv/drakyn")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", "/home/tester"},
		{"~/.local/share/drakyn", "/home/tester/.local/share/drakyn"},
		{"$DRAKYN_TEST_DIR/data", "/srv/drakyn/data"},
		{"/tmp//x/", "/tmp/x"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBaseURL(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "0.0.0.0"
	if got := cfg.BaseURL(); got != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL() = %q", got)
	}
	if got := cfg.Addr(); got != "0.0.0.0:8000" {
		t.Errorf("Addr() = %q", got)
	}
}
