package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment overrides, e.g. RAYLOGS_DASHBOARD_URL
const EnvPrefix = "RAYLOGS"

// Config represents application configuration
type Config struct {
	DashboardURL    string `json:"dashboardUrl" envconfig:"DASHBOARD_URL"`
	TimeoutSeconds  int    `json:"timeoutSeconds" envconfig:"TIMEOUT_SECONDS"`
	ViewerMaxLines  int    `json:"viewerMaxLines" envconfig:"VIEWER_MAX_LINES"`
	CacheTTLSeconds int    `json:"cacheTtlSeconds" envconfig:"CACHE_TTL_SECONDS"`
	VimMode         bool   `json:"vimMode" envconfig:"VIM_MODE"`
	LogLevel        string `json:"logLevel" envconfig:"LOG_LEVEL"`
	LogFile         string `json:"logFile,omitempty" envconfig:"LOG_FILE"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		DashboardURL:    "http://127.0.0.1:8265",
		TimeoutSeconds:  30,
		ViewerMaxLines:  1000,
		CacheTTLSeconds: 30,
		VimMode:         true,
		LogLevel:        "info",
	}
}

// Timeout returns the request timeout as a duration
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the listing cache lifetime as a duration
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks the values that would otherwise fail later and obscurely
func (c Config) Validate() error {
	u, err := url.Parse(c.DashboardURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidDashboardURL, c.DashboardURL)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTimeout, c.TimeoutSeconds)
	}
	return nil
}

// GetConfigDir returns the XDG config directory for ray-log-explorer
func GetConfigDir() (string, error) {
	var configDir string

	// Try XDG_CONFIG_HOME first
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		configDir = filepath.Join(xdgHome, "ray-log-explorer")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "ray-log-explorer")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}

	return configDir, nil
}

// DefaultLogFile returns the log file used when none is configured
func DefaultLogFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "ray-log-explorer.log"), nil
}

// ConfigPath returns the path of config.json
func ConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads configuration from disk, returns default if file doesn't exist
func LoadConfig() (Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultConfig(), err
	}

	// Start from defaults so a partial file keeps the rest
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from RAYLOGS_* environment variables.
// Unset variables leave the loaded value alone.
func ApplyEnv(cfg Config) (Config, error) {
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("load environment: %w", err)
	}
	cfg.DashboardURL = strings.TrimRight(strings.TrimSpace(cfg.DashboardURL), "/")
	return cfg, nil
}

// Load reads the config file and applies environment overrides
func Load() (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}
	return ApplyEnv(cfg)
}

// SaveConfig saves configuration to disk
func SaveConfig(cfg Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// Error types
var (
	ErrInvalidDashboardURL = fmt.Errorf("invalid dashboard url")
	ErrInvalidTimeout      = fmt.Errorf("timeout must be positive")
)
