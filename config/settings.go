package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LoadFile decodes the config file at path on top of Default(). Keys absent
// from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	// Arrays of tables replace the defaults only when present in the file.
	defaultProviders := cfg.Providers
	cfg.Providers = nil

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if !md.IsDefined("providers") {
		cfg.Providers = defaultProviders
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 && DebugLog != nil {
		DebugLog.Printf("[Config] Ignoring unknown keys in %s: %v", path, undecoded)
	}

	return cfg, nil
}

// CreateDefaultConfig writes the commented template to path unless a file
// already exists there.
func CreateDefaultConfig(path string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if FileExists(path) {
		return nil
	}

	if err := os.WriteFile(path, []byte(GenerateConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
