// Package config provides configuration management for the parley CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/tidwall/sjson"
)

const (
	appName        = "parley"
	configFileName = "parley.json"

	// DefaultModel is used when no model is configured or selected.
	DefaultModel = "gemini-2.0-flash"
)

// ProviderConfig holds one backend's authentication and endpoint settings.
// APIKey may be a literal value or a "$VAR" environment reference; Load
// resolves references.
type ProviderConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
}

// Options holds optional settings.
type Options struct {
	DataDir string `json:"data_directory,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

// Config is the top-level configuration structure.
type Config struct {
	Providers          map[string]*ProviderConfig `json:"providers,omitempty"`
	DefaultModel       string                     `json:"default_model,omitempty"`
	TranscriptionModel string                     `json:"transcription_model,omitempty"`
	Options            *Options                   `json:"options,omitempty"`
}

// NewConfig creates a Config with initialized maps.
func NewConfig() *Config {
	return &Config{
		Providers: make(map[string]*ProviderConfig),
		Options:   &Options{},
	}
}

// Provider returns the named provider's config, creating an empty entry if
// missing so callers can read fields without nil checks.
func (c *Config) Provider(name string) *ProviderConfig {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	p, ok := c.Providers[name]
	if !ok {
		p = &ProviderConfig{}
		c.Providers[name] = p
	}
	return p
}

// Model returns the configured default model, falling back to DefaultModel.
func (c *Config) Model() string {
	if c.DefaultModel != "" {
		return c.DefaultModel
	}
	return DefaultModel
}

// DataDir returns the data directory path from configuration.
func (c *Config) DataDir() string {
	if c.Options != nil && c.Options.DataDir != "" {
		return c.Options.DataDir
	}
	return filepath.Join(xdg.DataHome, appName)
}

// DatabasePath returns the chat history database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir(), "parley.db")
}

// GlobalConfigPath returns the path to the global configuration file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

// Resolve expands a "$VAR" or "${VAR}" value from the environment. Literal
// values pass through unchanged; a reference to an unset variable is an
// error so a missing key fails loudly instead of authenticating with an
// empty string.
func Resolve(value string) (string, error) {
	if !strings.HasPrefix(value, "$") {
		return value, nil
	}

	name := strings.TrimPrefix(value, "$")
	name = strings.TrimPrefix(name, "{")
	name = strings.TrimSuffix(name, "}")

	resolved, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("environment variable %q is not set", name)
	}
	return resolved, nil
}

// SetConfigField updates a single field in the config file using JSON path
// notation. This uses sjson for surgical updates - only the specified field
// is modified, preserving unrelated keys and comments of the raw file.
func SetConfigField(key string, value any) error {
	configPath := GlobalConfigPath()

	//nolint:gosec // G304: configPath is from trusted GlobalConfigPath(), not user input.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	newData, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	//nolint:gosec // 0o600 is intentionally restrictive for security.
	if err := os.WriteFile(configPath, []byte(newData), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
