package modelclient

import (
	"log/slog"
	"time"
)

// Config holds the configuration for the model backend client.
type Config struct {
	APIKey     string
	BaseURL    string
	RetryCount int
	RetryDelay time.Duration
	// Optional logger
	Logger *slog.Logger
}
