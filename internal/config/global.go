// Package config handles the global configuration file and its environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/refsplit/config.yml.
// Every field can be overridden by a REFSPLIT_* environment variable.
type GlobalConfig struct {
	OutputDir    string `yaml:"output_dir,omitempty" envconfig:"OUTPUT_DIR"`
	Format       string `yaml:"format,omitempty" envconfig:"FORMAT"`
	LogFile      string `yaml:"log_file,omitempty" envconfig:"LOG_FILE"`
	LogLevel     string `yaml:"log_level,omitempty" envconfig:"LOG_LEVEL"`
	CanonicalDOI *bool  `yaml:"canonical_doi,omitempty" envconfig:"CANONICAL_DOI"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "refsplit"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/refsplit/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// HelpfulConfigMessage explains where the config file lives and what it holds.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`Tip: Create %s to set defaults:
  mkdir -p %s
  cat > %s <<'YAML'
  output_dir: ~/refsplit-out
  format: csv
  log_file: ~/refsplit-out/app.log
  log_level: info
  canonical_doi: true
  YAML

Any field can also be set with REFSPLIT_OUTPUT_DIR, REFSPLIT_FORMAT,
REFSPLIT_LOG_FILE, REFSPLIT_LOG_LEVEL or REFSPLIT_CANONICAL_DOI.`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
