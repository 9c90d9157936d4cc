package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// AppName names the config, data and state directories
const AppName = "claude-token-counter"

const (
	DefaultRefreshSeconds = 5
	DefaultBaseURL        = "https://api.anthropic.com/v1"

	fileName       = "config.yaml"
	legacyFileName = "config.json"
)

// ErrNoAPIKey is returned when a command needs the usage API but no key is stored
var ErrNoAPIKey = errors.New("API key not configured, run: claude-token-counter config --api-key YOUR_KEY")

// Config holds the CLI configuration
type Config struct {
	APIKey         string `koanf:"api_key" yaml:"api_key,omitempty"`
	MonthlyLimit   uint64 `koanf:"monthly_limit" yaml:"monthly_limit,omitempty"`
	RefreshSeconds int    `koanf:"refresh_seconds" yaml:"refresh_seconds,omitempty"`
	MetricsAddr    string `koanf:"metrics_addr" yaml:"metrics_addr,omitempty"`
	BaseURL        string `koanf:"base_url" yaml:"base_url,omitempty"`
}

// DefaultDir returns the per-user config directory
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Path returns the config file inside dir
func Path(dir string) string {
	return filepath.Join(dir, fileName)
}

// Load reads the configuration from dir. Missing files yield defaults.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	path := Path(dir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filepath.Join(dir, legacyFileName)
	}

	if _, err := os.Stat(path); err == nil {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		if err := k.Unmarshal("", cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to dir with owner-only permissions
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	path := Path(dir)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}

func (c *Config) applyDefaults() {
	if c.RefreshSeconds <= 0 {
		c.RefreshSeconds = DefaultRefreshSeconds
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
}

// RequireAPIKey returns ErrNoAPIKey when no key is configured
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}

// MaskedAPIKey shows only the start and end of the key
func (c *Config) MaskedAPIKey() string {
	switch {
	case c.APIKey == "":
		return "(not set)"
	case len(c.APIKey) <= 14:
		return "****"
	default:
		return c.APIKey[:10] + "..." + c.APIKey[len(c.APIKey)-4:]
	}
}
