package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = ".hubview"

// DataDir returns the base data directory for hubview.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigPath returns the config file path, honouring HUBVIEW_CONFIG.
func ConfigPath() (string, error) {
	if override := strings.TrimSpace(os.Getenv(envConfigPath)); override != "" {
		return resolveConfigPath(override)
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.toml"), nil
}

// LogPath returns the file the terminal UI logs to.
func LogPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "hubview.log"), nil
}
