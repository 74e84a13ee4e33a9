package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/commitlog/config.yml
// - macOS: ~/Library/Application Support/commitlog/config.yml
// - Windows: %APPDATA%\commitlog\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "commitlog", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file.
// This is always .commitlog/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".commitlog", "config.yml")
}
