package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the global config file and resolves environment references in
// provider credentials. A missing file yields defaults, not an error.
func Load() (*Config, error) {
	return LoadFromFile(GlobalConfigPath())
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewConfig()

	if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyDefaults(cfg)

	if err := resolveProviders(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	//nolint:gosec // G304: Path is from trusted config locations, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]*ProviderConfig)
	}
	if cfg.Options == nil {
		cfg.Options = &Options{}
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
}

// resolveProviders expands $VAR references in API keys and base URLs. A
// provider whose key cannot be resolved is dropped so the rest of the config
// stays usable.
func resolveProviders(cfg *Config) error {
	for name, p := range cfg.Providers {
		if p == nil {
			delete(cfg.Providers, name)
			continue
		}
		if p.APIKey != "" {
			resolved, err := Resolve(p.APIKey)
			if err != nil {
				delete(cfg.Providers, name)
				continue
			}
			p.APIKey = resolved
		}
		if p.BaseURL != "" {
			resolved, err := Resolve(p.BaseURL)
			if err != nil {
				return fmt.Errorf("provider %q base URL: %w", name, err)
			}
			p.BaseURL = resolved
		}
	}
	return nil
}
