// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all charflow configuration.
type Config struct {
	Version int `yaml:"version"`

	Scan       ScanConfig       `yaml:"scan"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	S3         S3Config         `yaml:"s3"`
	Export     ExportConfig     `yaml:"export"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ScanConfig controls detection runs.
type ScanConfig struct {
	Workers int `yaml:"workers"` // 0 = NumCPU
}

// CheckpointConfig controls scan resumption state.
type CheckpointConfig struct {
	Backend   string        `yaml:"backend"` // file | redis | none
	Path      string        `yaml:"path"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisKey  string        `yaml:"redis_key"`
	TTL       time.Duration `yaml:"ttl"`
}

// S3Config for scanning objects in S3-compatible stores.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PathStyle bool   `yaml:"path_style"`
}

// ExportConfig controls report output defaults.
type ExportConfig struct {
	Format string `yaml:"format"` // csv | xlsx | parquet
}

// TelemetryConfig for optional tracing.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	charflowDir := filepath.Join(homeDir, ".charflow")

	return &Config{
		Version: 1,
		Scan: ScanConfig{
			Workers: 0, // auto
		},
		Checkpoint: CheckpointConfig{
			Backend:   "file",
			Path:      filepath.Join(charflowDir, "checkpoint.json"),
			RedisAddr: "localhost:6379",
			RedisKey:  "charflow:checkpoint",
			TTL:       24 * time.Hour,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Export: ExportConfig{
			Format: "csv",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start with defaults
	m.config = Default()

	// Load from paths in order (later overrides earlier)
	paths := m.getConfigPaths()
	for _, path := range paths {
		if err := m.loadFile(path); err != nil {
			// Ignore missing files, but surface errors for existing files
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	// Override with environment variables
	m.loadEnv()

	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// System config
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/charflow/config.yaml")
	}

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".charflow", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".charflow.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	// Merge non-zero values
	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	// Scan
	if src.Scan.Workers != 0 {
		m.config.Scan.Workers = src.Scan.Workers
	}

	// Checkpoint
	if src.Checkpoint.Backend != "" {
		m.config.Checkpoint.Backend = src.Checkpoint.Backend
	}
	if src.Checkpoint.Path != "" {
		m.config.Checkpoint.Path = src.Checkpoint.Path
	}
	if src.Checkpoint.RedisAddr != "" {
		m.config.Checkpoint.RedisAddr = src.Checkpoint.RedisAddr
	}
	if src.Checkpoint.RedisKey != "" {
		m.config.Checkpoint.RedisKey = src.Checkpoint.RedisKey
	}
	if src.Checkpoint.TTL != 0 {
		m.config.Checkpoint.TTL = src.Checkpoint.TTL
	}

	// S3
	if src.S3.Region != "" {
		m.config.S3.Region = src.S3.Region
	}
	if src.S3.Endpoint != "" {
		m.config.S3.Endpoint = src.S3.Endpoint
	}
	if src.S3.AccessKey != "" {
		m.config.S3.AccessKey = src.S3.AccessKey
	}
	if src.S3.SecretKey != "" {
		m.config.S3.SecretKey = src.S3.SecretKey
	}
	if src.S3.PathStyle {
		m.config.S3.PathStyle = true
	}

	// Export
	if src.Export.Format != "" {
		m.config.Export.Format = src.Export.Format
	}

	// Telemetry
	if src.Telemetry.Enabled {
		m.config.Telemetry.Enabled = true
	}
	if src.Telemetry.Endpoint != "" {
		m.config.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	// CHARFLOW_WORKERS
	if v := os.Getenv("CHARFLOW_WORKERS"); v != "" {
		var workers int
		if _, err := fmt.Sscanf(v, "%d", &workers); err == nil {
			m.config.Scan.Workers = workers
		}
	}

	// CHARFLOW_CHECKPOINT
	if v := os.Getenv("CHARFLOW_CHECKPOINT"); v != "" {
		m.config.Checkpoint.Backend = v
	}

	// CHARFLOW_REDIS_ADDR
	if v := os.Getenv("CHARFLOW_REDIS_ADDR"); v != "" {
		m.config.Checkpoint.RedisAddr = v
	}

	// CHARFLOW_S3_ENDPOINT
	if v := os.Getenv("CHARFLOW_S3_ENDPOINT"); v != "" {
		m.config.S3.Endpoint = v
	}

	// CHARFLOW_OTLP_ENDPOINT
	if v := os.Getenv("CHARFLOW_OTLP_ENDPOINT"); v != "" {
		m.config.Telemetry.Endpoint = v
		m.config.Telemetry.Enabled = true
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".charflow")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
