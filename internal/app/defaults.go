package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - CKPT_CONFIG_PATH: config file location (default: ~/.config/ckpt.toml)
//   - CKPT_HOME: base directory for ckpt data (default: ~/.local/share/ckpt)
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

// getConfigPath returns the config file path, checking CKPT_CONFIG_PATH env var first,
// then falling back to the default ~/.config/ckpt.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("CKPT_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "ckpt.toml"), nil
}

// getBaseDir returns the base directory for ckpt data, checking CKPT_HOME env var first,
// then falling back to the XDG default ~/.local/share/ckpt.
func getBaseDir() (string, error) {
	if path := os.Getenv("CKPT_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "ckpt"), nil
}
