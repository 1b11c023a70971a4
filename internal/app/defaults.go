package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - ETL_CONFIG_PATH: config file location (default: ~/.config/etl.toml)
//   - ETL_HOME: base directory for etl data (default: ~/.local/share/etl)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking ETL_CONFIG_PATH env var first,
// then falling back to the default ~/.config/etl.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("ETL_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "etl.toml"), nil
}

// getBaseDir returns the base directory for etl data, checking ETL_HOME env var first,
// then falling back to the XDG default ~/.local/share/etl.
func getBaseDir() (string, error) {
	if path := os.Getenv("ETL_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "etl"), nil
}
