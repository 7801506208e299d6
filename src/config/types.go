package config

import "time"

// Config is the complete configuration for skela.
type Config struct {
	// Version of the configuration format
	Version string `json:"version"`

	// Server holds the HTTP listener settings
	Server ServerConfig `json:"server"`

	// Model holds the model backend settings
	Model ModelConfig `json:"model"`

	// Tiers maps a routing tier to the model that serves it. Entries
	// override the built-in defaults per tier.
	Tiers map[string]string `json:"tiers,omitempty" validate:"dive,keys,tier,endkeys,required"`

	// Storage holds the database settings
	Storage StorageConfig `json:"storage"`

	// Templates holds the project template catalog settings
	Templates TemplatesConfig `json:"templates"`

	// Session holds per-session chat settings
	Session SessionConfig `json:"session"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	// Host to bind, empty for all interfaces
	Host string `json:"host,omitempty"`

	// Port to listen on
	Port int `json:"port" validate:"min=1,max=65535"`

	// AllowedOrigin restricts WebSocket origins, "*" allows any
	AllowedOrigin string `json:"allowed_origin,omitempty"`
}

// ModelConfig defines the model backend connection.
type ModelConfig struct {
	// APIKey for the backend. Usually left empty in files and supplied
	// via APIKeyEnvVar instead.
	APIKey string `json:"api_key,omitempty"`

	// APIKeyEnvVar names the environment variable holding the key
	APIKeyEnvVar string `json:"api_key_env_var,omitempty"`

	// BaseURL of the backend API
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// RetryCount for failed requests
	RetryCount int `json:"retry_count,omitempty" validate:"min=0,max=10"`

	// RetryDelay between attempts
	RetryDelay time.Duration `json:"retry_delay,omitempty"`
}

// StorageConfig defines where session state lives.
type StorageConfig struct {
	// DatabasePath is the SQLite file, ":memory:" for ephemeral state
	DatabasePath string `json:"database_path,omitempty"`
}

// TemplatesConfig defines where project templates come from.
type TemplatesConfig struct {
	// Dir is a directory of templates, each with a template.json. Empty
	// uses the built-in catalog.
	Dir string `json:"dir,omitempty"`
}

// SessionConfig defines per-session chat behavior.
type SessionConfig struct {
	// MailboxSize bounds messages queued behind an in-flight turn
	MailboxSize int `json:"mailbox_size,omitempty" validate:"min=0,max=1024"`

	// TurnTimeout bounds one turn end to end
	TurnTimeout time.Duration `json:"turn_timeout,omitempty"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" validate:"omitempty,log_level"`

	// Format is the output format (text, json)
	Format string `json:"format,omitempty" validate:"omitempty,log_format"`
}

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	return "config field " + e.Field + ": " + e.Message
}
