package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetXDGDataDir returns the XDG data directory for punchclock.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/punchclock
func GetXDGDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "punchclock"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", "punchclock"), nil
}

// DefaultDatabaseURL returns a file: URL for punchclock.db inside the data
// directory, creating the directory if needed.
func DefaultDatabaseURL() (string, error) {
	dir, err := GetXDGDataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return "file:" + filepath.Join(dir, "punchclock.db"), nil
}
