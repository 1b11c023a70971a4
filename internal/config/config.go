package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for etl.
// Connection credentials are deliberately absent: they come from the
// command line on every run.
type Config struct {
	LogDir   string         `toml:"log_dir"`
	Database DatabaseConfig `toml:"database"`
	Source   SourceConfig   `toml:"source"`
	Target   TargetConfig   `toml:"target"`
	Mask     MaskConfig     `toml:"mask"`
}

// DatabaseConfig holds connection tuning for the pgx pool.
type DatabaseConfig struct {
	Schema                string `toml:"schema"`
	MaxConns              int32  `toml:"max_conns,omitempty"`
	ConnectTimeoutSeconds int    `toml:"connect_timeout_seconds,omitempty"`
}

// SourceConfig names the two source tables.
type SourceConfig struct {
	UsersTable    string `toml:"users_table"`
	ProjectsTable string `toml:"projects_table"`
}

// TargetConfig names the destination table. Its contents are fully
// replaced on every successful run.
type TargetConfig struct {
	Table string `toml:"table"`
}

// MaskConfig controls email redaction.
// Policy is "reject" (fail the run on an email without "@") or
// "degrade" (emit an empty local part).
type MaskConfig struct {
	Policy string `toml:"policy"`
}

// NewConfig creates a Config with defaults matching the analytics
// database layout.
func NewConfig(baseDir string) *Config {
	return &Config{
		LogDir: filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Schema:                "public",
			MaxConns:              4,
			ConnectTimeoutSeconds: 10,
		},
		Source: SourceConfig{
			UsersTable:    "users",
			ProjectsTable: "projects",
		},
		Target: TargetConfig{
			Table: "user_project_analytics",
		},
		Mask: MaskConfig{
			Policy: "reject",
		},
	}
}

// Validate checks structural fields. The mask policy is validated by
// the app layer when it is parsed.
func (c *Config) Validate() error {
	if c.Database.Schema == "" {
		return fmt.Errorf("database schema must not be empty")
	}
	if c.Source.UsersTable == "" || c.Source.ProjectsTable == "" {
		return fmt.Errorf("source table names must not be empty")
	}
	if c.Target.Table == "" {
		return fmt.Errorf("target table must not be empty")
	}
	return nil
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

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
