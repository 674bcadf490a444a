package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name searched for in the working directory and ConfigDir.
const FileName = "bin-thrower.yaml"

// Load loads configuration with priority: defaults < file < flags, then validates it.
//
// Parameters:
//   - flags: parsed command-line overrides, may be nil
//
// Returns:
//   - *Config: the effective config
//   - error: a file read/parse error or a Validate error
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	var path string
	if flags != nil && flags.Config != "" {
		path = flags.Config
	} else {
		path = findConfigFile()
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		filepath.Join(".", FileName),
		filepath.Join(ConfigDir(), FileName),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "BinThrower")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "BinThrower")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "bin-thrower")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "bin-thrower")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
