// Package config manages the yring configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the yring configuration
type Config struct {
	// MaxEntries bounds both store retention and the in-memory cache.
	MaxEntries int `yaml:"max_entries"`

	// MaxContentSize is the entry content byte ceiling.
	MaxContentSize int64 `yaml:"max_content_size"`

	// TrackedRegisters are monitored in addition to the unnamed
	// register, which is always tracked.
	TrackedRegisters []string `yaml:"tracked_registers,omitempty"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug"`

	// HistoryLocation overrides the default database path.
	HistoryLocation string `yaml:"history_location,omitempty"`

	// LockTimeoutMS bounds the wait for the store write lock.
	LockTimeoutMS int `yaml:"lock_timeout_ms"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxEntries:     100,
		MaxContentSize: 1 << 20,
		Debug:          false,
		LockTimeoutMS:  3000,
	}
}

// LockTimeout returns the configured lock timeout as a duration.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "yring")
	configPath := filepath.Join(configDir, "config.yaml")

	return &ConfigManager{
		configPath: configPath,
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist
func (cm *ConfigManager) Load() (*Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cm.validateAndSetDefaults(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := cm.validateAndSetDefaults(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

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

// validateAndSetDefaults validates configuration and sets defaults for missing fields
func (cm *ConfigManager) validateAndSetDefaults(config *Config) error {
	if config.MaxEntries <= 0 {
		return fmt.Errorf("max_entries must be greater than 0")
	}
	if config.MaxEntries > 1000 {
		return fmt.Errorf("max_entries cannot exceed 1000 items")
	}

	if config.MaxContentSize <= 0 {
		config.MaxContentSize = DefaultConfig().MaxContentSize
	}
	if config.MaxContentSize > 64<<20 {
		return fmt.Errorf("max_content_size cannot exceed 64 MiB")
	}

	if config.LockTimeoutMS <= 0 {
		config.LockTimeoutMS = DefaultConfig().LockTimeoutMS
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}

	switch key {
	case "max-entries":
		maxEntries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for max-entries: %s", value)
		}
		config.MaxEntries = maxEntries
	case "max-content-size":
		maxSize, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for max-content-size: %s", value)
		}
		config.MaxContentSize = maxSize
	case "tracked-registers":
		config.TrackedRegisters = splitRegisters(value)
	case "debug":
		switch value {
		case "true":
			config.Debug = true
		case "false":
			config.Debug = false
		default:
			return fmt.Errorf("invalid boolean value for debug: %s (must be 'true' or 'false')", value)
		}
	case "history-location":
		config.HistoryLocation = value
	case "lock-timeout-ms":
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for lock-timeout-ms: %s", value)
		}
		config.LockTimeoutMS = timeout
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	config, err := cm.Load()
	if err != nil {
		return "", err
	}

	switch key {
	case "max-entries":
		return strconv.Itoa(config.MaxEntries), nil
	case "max-content-size":
		return strconv.FormatInt(config.MaxContentSize, 10), nil
	case "tracked-registers":
		return strings.Join(config.TrackedRegisters, ","), nil
	case "debug":
		return strconv.FormatBool(config.Debug), nil
	case "history-location":
		if config.HistoryLocation == "" {
			return "[default]", nil
		}
		return config.HistoryLocation, nil
	case "lock-timeout-ms":
		return strconv.Itoa(config.LockTimeoutMS), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	result := map[string]string{
		"max-entries":       strconv.Itoa(config.MaxEntries),
		"max-content-size":  strconv.FormatInt(config.MaxContentSize, 10),
		"tracked-registers": strings.Join(config.TrackedRegisters, ","),
		"debug":             strconv.FormatBool(config.Debug),
		"history-location":  config.HistoryLocation,
		"lock-timeout-ms":   strconv.Itoa(config.LockTimeoutMS),
	}

	if result["history-location"] == "" {
		result["history-location"] = "[default]"
	}

	return result, nil
}

// splitRegisters parses a comma-separated register list, dropping empty
// elements.
func splitRegisters(value string) []string {
	var registers []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			registers = append(registers, part)
		}
	}
	return registers
}
