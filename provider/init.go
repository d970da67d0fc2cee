package provider

import (
	"fmt"
	"time"

	"drakyn/config"
	"drakyn/model"
)

// FromConfig creates the provider that serves the configured agent model.
//
// The model identifier (agent.model / DRAKYN_MODEL) selects the backend; the
// matching [[providers]] entry supplies base URL and API key. When
// agent.provider_retries is positive the provider is wrapped with WithRetry.
func FromConfig(cfg *config.Config) (model.Provider, error) {
	kind, name, err := ParseModelID(cfg.Agent.Model)
	if err != nil {
		return nil, err
	}

	settings := cfg.ProviderSettings(string(kind))
	p, err := NewProvider(Config{
		Type:    kind,
		BaseURL: settings.BaseURL,
		Model:   name,
		APIKey:  cfg.APIKey(string(kind)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", kind, err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] Using %s provider (model: %s)", kind, p.GetModel())
	}

	policy := DefaultRetryPolicy()
	policy.MaxRetries = cfg.Agent.ProviderRetries
	policy.OnRetry = func(err error, attempt int, delay time.Duration) {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] attempt %d failed: %v", attempt, err)
		}
	}
	return WithRetry(p, policy), nil
}

// InitializeProviders creates a provider instance for every enabled
// [[providers]] entry, keyed by provider ID.
//
// These instances are used for model discovery (GET /models, `drakyn models`)
// and are created without a model. Providers that cannot be created (missing
// key, vLLM without a model) are logged and skipped so one bad entry doesn't
// hide the others.
func InitializeProviders(cfg *config.Config) map[string]model.Provider {
	providers := make(map[string]model.Provider)

	for _, providerCfg := range cfg.Providers {
		if !providerCfg.Enabled {
			continue
		}

		providerType := MapProviderIDToType(providerCfg.ID)
		if providerType == ProviderTypeGollm {
			// gollm clients are bound to one vendor/model and have no listing API
			continue
		}

		p, err := NewProvider(Config{
			Type:    providerType,
			BaseURL: providerCfg.BaseURL,
			APIKey:  cfg.APIKey(providerCfg.ID),
		})
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Provider] Warning: failed to initialize provider %s: %v", providerCfg.ID, err)
			}
			continue
		}

		providers[providerCfg.ID] = p
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] Initialized provider: %s (type: %s)", providerCfg.ID, providerType)
		}
	}

	return providers
}
