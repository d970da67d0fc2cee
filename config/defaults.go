package config

import (
	"time"

	"drakyn/model"
)

const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 8000
	DefaultModel    = "anthropic/claude-sonnet-4-5-20250929"
	DefaultRegistry = "http://localhost:8001"
)

func Default() *Config {
	return &Config{
		DataDirectory: "~/.local/share/drakyn",
		Server: ServerConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			CORSOrigins: []string{"*"},
		},
		Agent: AgentSection{
			Model:           DefaultModel,
			MaxIterations:   model.DefaultMaxIterations,
			Temperature:     model.DefaultTemperature,
			MaxTokens:       model.DefaultMaxTokens,
			TopP:            model.DefaultTopP,
			ProviderTimeout: model.DefaultProviderTimeout,
			ToolTimeout:     model.DefaultToolTimeout,
			ExtractPolicy:   string(model.ExtractFirst),
		},
		Providers: DefaultProviders(),
		Registry: RegistryConfig{
			RegistryServer: RegistryServer{
				Name: "default",
				Type: "http",
				URL:  DefaultRegistry,
			},
			RefreshInterval: 60 * time.Second,
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		Storage: StorageConfig{
			RecordRuns: true,
		},
	}
}

func GenerateConfigTemplate() string {
	return `# Drakyn Configuration
# Location: ~/.config/drakyn/config.toml
# This file uses TOML format: https://toml.io

# Directory for runs.db and debug.log
data_directory = "~/.local/share/drakyn"

[server]
host = "127.0.0.1"
port = 8000
cors_origins = ["*"]

[agent]
# Model identifier: <provider>/<model>
# Examples: "ollama/llama3.1", "vllm/Qwen/Qwen2.5-7B-Instruct",
#           "openrouter/meta-llama/llama-3.2-90b-instruct", "gollm/groq/llama-3.1-8b-instant"
model = "anthropic/claude-sonnet-4-5-20250929"
max_iterations = 5        # 1..20
temperature = 0.7         # 0..2
max_tokens = 512
top_p = 0.9               # 0..1
verbose = false
provider_timeout = "120s"
tool_timeout = "30s"
provider_retries = 0      # retries for rate limit / connection / 5xx failures
extract_policy = "first"  # "first" or "last" when a reply holds several tool calls
# Tool error classes that end the run instead of being fed back to the model
fatal_tool_error_classes = []
# Replaces the built-in agent prompt (the tool list is always appended)
# system_prompt = ""

# Completion backends. API keys are read from the named environment variable.
[[providers]]
id = "ollama"
base_url = "http://localhost:11434"
enabled = true

[[providers]]
id = "vllm"
base_url = "http://127.0.0.1:8002/v1"
api_key_env = "VLLM_API_KEY"
enabled = false

[[providers]]
id = "openai"
base_url = "https://api.openai.com/v1"
api_key_env = "OPENAI_API_KEY"
enabled = false

[[providers]]
id = "openrouter"
base_url = "https://openrouter.ai/api/v1"
api_key_env = "OPENROUTER_API_KEY"
enabled = false

[[providers]]
id = "anthropic"
base_url = "https://api.anthropic.com"
api_key_env = "ANTHROPIC_API_KEY"
enabled = true

[registry]
# "http" for a registry service, "mcp" for an MCP server
name = "default"
type = "http"
url = "http://localhost:8001"
refresh_interval = "60s"

# Several servers can be combined; their tools are exposed as "<name>.<tool>".
# [[registry.servers]]
# name = "files"
# type = "mcp"
# transport = "stdio"
# command = "npx"
# args = ["-y", "@modelcontextprotocol/server-filesystem", "/tmp"]

[cache]
# Share the tool catalogue between instances (optional)
# redis_url = "redis://localhost:6379/0"
ttl = "10m"

[storage]
record_runs = true
`
}
