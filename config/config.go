// Package config loads the tool configuration from a YAML or JSON file.
// Exchange credentials are resolved from the environment, never stored in
// the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete tool configuration.
type Config struct {
	Exchange ExchangeConfig `json:"exchange" yaml:"exchange"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
}

// ExchangeConfig locates the exchange API and the credential environment
// variables.
type ExchangeConfig struct {
	BaseURL       string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	KeyEnv        string `json:"key_env" yaml:"key_env"`
	SecretEnv     string `json:"secret_env" yaml:"secret_env"`
	PassphraseEnv string `json:"passphrase_env" yaml:"passphrase_env"`
}

// CacheConfig locates the candle cache database.
type CacheConfig struct {
	Path string `json:"path" yaml:"path"`
}

// FetchConfig tunes the historic-rate fetcher.
type FetchConfig struct {
	Granularity     string `json:"granularity" yaml:"granularity"`             // e.g. "1h", "6h"
	MaxBarsPerCall  int    `json:"max_bars_per_call" yaml:"max_bars_per_call"` // exchange row cap
	RequestDelay    string `json:"request_delay" yaml:"request_delay"`         // e.g. "500ms"
	DelayAfterCalls int    `json:"delay_after_calls" yaml:"delay_after_calls"`
}

// ParseGranularity converts the granularity string to a duration.
func (f FetchConfig) ParseGranularity() (time.Duration, error) {
	if f.Granularity == "" {
		return 0, nil
	}
	return time.ParseDuration(f.Granularity)
}

// ParseRequestDelay converts the request delay string to a duration.
func (f FetchConfig) ParseRequestDelay() (time.Duration, error) {
	if f.RequestDelay == "" {
		return 0, nil
	}
	return time.ParseDuration(f.RequestDelay)
}

// Key reads the API key from the configured environment variable.
func (e ExchangeConfig) Key() string { return os.Getenv(e.KeyEnv) }

// Secret reads the API secret from the configured environment variable.
func (e ExchangeConfig) Secret() string { return os.Getenv(e.SecretEnv) }

// Passphrase reads the API passphrase from the configured environment variable.
func (e ExchangeConfig) Passphrase() string { return os.Getenv(e.PassphraseEnv) }

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content; YAML is tried first).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML, or JSON for .json paths).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required")
	}
	if _, err := c.Fetch.ParseGranularity(); err != nil {
		return fmt.Errorf("fetch.granularity: %w", err)
	}
	if _, err := c.Fetch.ParseRequestDelay(); err != nil {
		return fmt.Errorf("fetch.request_delay: %w", err)
	}
	if c.Fetch.MaxBarsPerCall < 0 {
		return fmt.Errorf("fetch.max_bars_per_call must not be negative")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			KeyEnv:        "COINFOLIO_API_KEY",
			SecretEnv:     "COINFOLIO_API_SECRET",
			PassphraseEnv: "COINFOLIO_API_PASSPHRASE",
		},
		Cache: CacheConfig{
			Path: "./candles.db",
		},
		Fetch: FetchConfig{
			Granularity:     "1h",
			MaxBarsPerCall:  300,
			RequestDelay:    "500ms",
			DelayAfterCalls: 5,
		},
	}
}
