package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetDefaultDatabasePath returns the default session database path
// under the XDG state directory.
func GetDefaultDatabasePath() string {
	return filepath.Join(xdg.StateHome, "skela", "sessions.db")
}

// GetDefaultConfigPath returns the default user configuration path.
func GetDefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "skela", "config.json")
}
