// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDatabasePath returns the default SQLite database location.
// It can be overridden with the database.path config key or PAYOFF_DATABASE_PATH.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "payoff.db"
	}
	return filepath.Join(home, ".local", "share", "payoff", "payoff.db")
}

// DefaultConfigDir returns the directory searched for config.yaml.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "payoff")
}

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}
