// Package config loads the clipvault YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultMaxItemsPerGroup is the retention cap applied per group when the
// config file does not override it.
const DefaultMaxItemsPerGroup = 300

// Config represents the clipvault configuration
type Config struct {
	// MaxItemsPerGroup caps the unpinned items retained per group. Zero or a
	// negative value disables pruning entirely (unlimited history).
	MaxItemsPerGroup int `yaml:"max_items_per_group"`

	// HistoryLocation overrides the database file path.
	HistoryLocation string `yaml:"history_location,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxItemsPerGroup: DefaultMaxItemsPerGroup,
	}
}

// Manager handles configuration file persistence
type Manager struct {
	configPath string
}

// NewManager creates a configuration manager pointing at the default config
// path under the user's config directory.
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "clipvault")
	return &Manager{
		configPath: filepath.Join(configDir, "config.yaml"),
	}, nil
}

// NewManagerWithPath creates a config manager with a custom config path
func NewManagerWithPath(configPath string) *Manager {
	return &Manager{configPath: configPath}
}

// Load reads the configuration from file. A missing file yields the default
// configuration; keys absent from the file keep their defaults, while an
// explicit zero or negative cap is preserved (unlimited history).
func (cm *Manager) Load() (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *Manager) Save(config *Config) error {
	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *Manager) GetConfigPath() string {
	return cm.configPath
}

// Update modifies a specific configuration value by key
func (cm *Manager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}

	switch key {
	case "max-items-per-group":
		var limit int
		if _, err := fmt.Sscanf(value, "%d", &limit); err != nil {
			return fmt.Errorf("invalid integer value for max-items-per-group: %s", value)
		}
		config.MaxItemsPerGroup = limit
	case "history-location":
		config.HistoryLocation = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *Manager) Get(key string) (string, error) {
	config, err := cm.Load()
	if err != nil {
		return "", err
	}

	switch key {
	case "max-items-per-group":
		return fmt.Sprintf("%d", config.MaxItemsPerGroup), nil
	case "history-location":
		if config.HistoryLocation == "" {
			return "[default]", nil
		}
		return config.HistoryLocation, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// List returns all configuration keys and values
func (cm *Manager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	result := map[string]string{
		"max-items-per-group": fmt.Sprintf("%d", config.MaxItemsPerGroup),
		"history-location":    config.HistoryLocation,
	}
	if result["history-location"] == "" {
		result["history-location"] = "[default]"
	}

	return result, nil
}
