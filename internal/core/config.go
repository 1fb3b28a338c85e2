package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/tailscale/hujson"
)

const (
	appDirName     = "skillwire"
	configFileName = "config.json"

	defaultAPIBaseURL    = "https://registry.skillwire.dev/api/v1"
	defaultTimeoutMS     = 30_000
	defaultMaxConcurrent = 4
)

// FileConfig is the persisted configuration at the user config dir. The file
// is parsed as JSONC, so comments and trailing commas are tolerated.
type FileConfig struct {
	APIBaseURL       string `json:"apiBaseUrl,omitempty"`
	InstallDir       string `json:"installDir,omitempty"`
	TimeoutMS        int    `json:"timeoutMs,omitempty"`
	MaxConcurrent    int    `json:"maxConcurrent,omitempty"`
	SkipVerify       bool   `json:"skipVerify,omitempty"`
	DisableTelemetry bool   `json:"disableTelemetry,omitempty"`
}

// RunConfig converts the file configuration into the explicit runtime Config
// handed to core components.
func (fc *FileConfig) RunConfig() Config {
	return Config{
		APIBaseURL:    fc.APIBaseURL,
		InstallDir:    fc.InstallDir,
		Timeout:       time.Duration(fc.TimeoutMS) * time.Millisecond,
		MaxConcurrent: fc.MaxConcurrent,
		SkipVerify:    fc.SkipVerify,
	}
}

// ConfigManager reads and writes the skillwire configuration file. It is the
// single place that resolves user directories; core components receive the
// resulting Config struct and never touch environment state.
type ConfigManager struct {
	configDir string
}

// NewConfigManager creates a ConfigManager rooted at the XDG config dir.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{configDir: filepath.Join(xdg.ConfigHome, appDirName)}
}

// NewConfigManagerWithDir creates a ConfigManager using a custom directory.
// Useful for testing.
func NewConfigManagerWithDir(dir string) *ConfigManager {
	return &ConfigManager{configDir: dir}
}

// ConfigPath returns the full path to the config file.
func (cm *ConfigManager) ConfigPath() string {
	return filepath.Join(cm.configDir, configFileName)
}

// Load reads the config from disk, filling defaults for absent fields.
// A missing file yields the default configuration.
func (cm *ConfigManager) Load() (*FileConfig, error) {
	cfg := defaultFileConfig()

	data, err := os.ReadFile(cm.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// JSONC: strip comments and trailing commas before decoding.
	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := json.Unmarshal(standard, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Save writes the config atomically, creating the directory if needed.
func (cm *ConfigManager) Save(cfg *FileConfig) error {
	if err := os.MkdirAll(cm.configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	tmpPath := cm.ConfigPath() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpPath, cm.ConfigPath()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func defaultFileConfig() *FileConfig {
	cfg := &FileConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *FileConfig) {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.InstallDir == "" {
		cfg.InstallDir = filepath.Join(xdg.DataHome, appDirName)
	}
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = defaultTimeoutMS
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
}
