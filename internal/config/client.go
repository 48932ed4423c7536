package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfig holds the command-line client preferences kept in
// ~/.atlas/config.yaml.
type ClientConfig struct {
	APIURL   string        `yaml:"api_url"`
	PageSize int           `yaml:"page_size"`
	Debounce time.Duration `yaml:"debounce"`
	LogLevel string        `yaml:"log_level"`
}

// DefaultClientConfig returns client defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		APIURL:   "http://localhost:8080",
		PageSize: 20,
		Debounce: 300 * time.Millisecond,
		LogLevel: "warn",
	}
}

// ClientDir is the directory holding client config and session, ~/.atlas
// unless ATLAS_HOME is set.
func ClientDir() (string, error) {
	if dir := os.Getenv("ATLAS_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".atlas"), nil
}

// LoadClientConfig reads path on top of the defaults. A missing file is not
// an error. ATLAS_API_URL overrides the file.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("ATLAS_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 20
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func (c *ClientConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
