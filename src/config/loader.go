package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvironmentPrefix is the prefix of every environment override.
const EnvironmentPrefix = "SKELA"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Port:          8080,
			AllowedOrigin: "*",
		},
		Model: ModelConfig{
			APIKeyEnvVar: "OPENROUTER_API_KEY",
			BaseURL:      "https://openrouter.ai/api/v1",
			RetryCount:   3,
			RetryDelay:   time.Second,
		},
		Storage: StorageConfig{
			DatabasePath: GetDefaultDatabasePath(),
		},
		Session: SessionConfig{
			MailboxSize: 16,
			TurnTimeout: 120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Loader handles loading and merging configuration from its sources.
type Loader struct {
	path      string
	validator *Validator
}

// NewLoader creates a loader reading the given file path. An empty path
// uses the default user configuration location.
func NewLoader(path string) *Loader {
	if path == "" {
		path = GetDefaultConfigPath()
	}
	return &Loader{
		path:      path,
		validator: NewValidator(),
	}
}

// Load builds the effective configuration: defaults, then the config
// file if present, then environment overrides. The result is validated
// before being returned.
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	if fileConfig, err := l.loadFile(l.path); err == nil {
		config = mergeConfigs(config, fileConfig)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config from %s: %w", l.path, err)
	}

	applyEnvironmentOverrides(config)
	resolveAPIKey(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFile loads a single configuration file
func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &config, nil
}

// mergeConfigs merges two configurations with the second taking precedence
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	if override.Server.Host != "" {
		result.Server.Host = override.Server.Host
	}
	if override.Server.Port != 0 {
		result.Server.Port = override.Server.Port
	}
	if override.Server.AllowedOrigin != "" {
		result.Server.AllowedOrigin = override.Server.AllowedOrigin
	}

	if override.Model.APIKey != "" {
		result.Model.APIKey = override.Model.APIKey
	}
	if override.Model.APIKeyEnvVar != "" {
		result.Model.APIKeyEnvVar = override.Model.APIKeyEnvVar
	}
	if override.Model.BaseURL != "" {
		result.Model.BaseURL = override.Model.BaseURL
	}
	if override.Model.RetryCount != 0 {
		result.Model.RetryCount = override.Model.RetryCount
	}
	if override.Model.RetryDelay != 0 {
		result.Model.RetryDelay = override.Model.RetryDelay
	}

	if len(override.Tiers) > 0 {
		if result.Tiers == nil {
			result.Tiers = make(map[string]string)
		}
		for tier, model := range override.Tiers {
			result.Tiers[tier] = model
		}
	}

	if override.Storage.DatabasePath != "" {
		result.Storage.DatabasePath = override.Storage.DatabasePath
	}

	if override.Templates.Dir != "" {
		result.Templates.Dir = override.Templates.Dir
	}

	if override.Session.MailboxSize != 0 {
		result.Session.MailboxSize = override.Session.MailboxSize
	}
	if override.Session.TurnTimeout != 0 {
		result.Session.TurnTimeout = override.Session.TurnTimeout
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// applyEnvironmentOverrides applies environment variable overrides to config
func applyEnvironmentOverrides(config *Config) {
	if apiKey := os.Getenv(EnvironmentPrefix + "_API_KEY"); apiKey != "" {
		config.Model.APIKey = apiKey
	}
	if baseURL := os.Getenv(EnvironmentPrefix + "_BASE_URL"); baseURL != "" {
		config.Model.BaseURL = baseURL
	}
	if port := os.Getenv(EnvironmentPrefix + "_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbPath := os.Getenv(EnvironmentPrefix + "_DB_PATH"); dbPath != "" {
		config.Storage.DatabasePath = dbPath
	}
	if level := os.Getenv(EnvironmentPrefix + "_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// resolveAPIKey fills the API key from its named environment variable
// when no explicit key was configured.
func resolveAPIKey(config *Config) {
	if config.Model.APIKey != "" || config.Model.APIKeyEnvVar == "" {
		return
	}
	if apiKey := os.Getenv(config.Model.APIKeyEnvVar); apiKey != "" {
		config.Model.APIKey = apiKey
	}
}
