package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for ckpt.
type Config struct {
	ProjectID   string         `toml:"project_id"`
	ProjectRoot string         `toml:"project_root"`
	BackupDir   string         `toml:"backup_dir"`
	LogDir      string         `toml:"log_dir"`
	HistoryDB   string         `toml:"history_db"`
	Registry    RegistryConfig `toml:"registry"`
	Database    DatabaseConfig `toml:"database"`
	Configs     ConfigsConfig  `toml:"config_files"`
	Archive     ArchiveConfig  `toml:"archive"`
}

// RegistryConfig selects where the restore-point ledger lives.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type RegistryConfig struct {
	Type      string `toml:"type"`                 // "file" or "memory"
	StatePath string `toml:"state_path,omitempty"` // only used for type=file
	Capacity  int    `toml:"capacity"`             // max retained restore points; <= 0 selects the default of 10
}

// DatabaseConfig lists the embedded database files to capture and the
// logical-dump tool to try for each.
type DatabaseConfig struct {
	Paths    []string `toml:"paths"`
	DumpTool string   `toml:"dump_tool"` // "" disables logical dumps
}

// ConfigsConfig lists the configuration/metadata files to capture, relative
// to the project root unless absolute.
type ConfigsConfig struct {
	Paths []string `toml:"paths"`
}

// ArchiveConfig holds the full-archive exclusion list. Empty selects the
// built-in defaults.
type ArchiveConfig struct {
	Excludes []string `toml:"excludes,omitempty"`
}

// NewConfig creates a new Config with the provided values and default
// layout under projectRoot and baseDir.
func NewConfig(projectID, projectRoot, baseDir string) *Config {
	return &Config{
		ProjectID:   projectID,
		ProjectRoot: projectRoot,
		BackupDir:   filepath.Join(baseDir, "backups"),
		LogDir:      filepath.Join(baseDir, "log"),
		HistoryDB:   filepath.Join(baseDir, "history.db"),
		Registry: RegistryConfig{
			Type:      "file",
			StatePath: filepath.Join(projectRoot, ".project-state.json"),
		},
		Database: DatabaseConfig{
			DumpTool: "sqlite3",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the
// provided Config. Refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
