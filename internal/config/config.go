package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/matsen/refsplit/internal/export"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix of environment overrides, e.g. REFSPLIT_FORMAT.
const EnvPrefix = "REFSPLIT"

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultOutputDir = "refsplit-out"
	DefaultFormat    = "csv"
	DefaultLogLevel  = "info"
)

// ErrInvalidConfig is returned when a configured value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Settings are the effective values after defaults, the config file and the
// environment have been applied. Command-line flags are applied by the caller.
type Settings struct {
	OutputDir    string `json:"output_dir"`
	Format       string `json:"format"`
	LogFile      string `json:"log_file"`
	LogLevel     string `json:"log_level"`
	CanonicalDOI bool   `json:"canonical_doi"`
	ConfigPath   string `json:"config_path"`
}

// Load resolves Settings from the global config file and REFSPLIT_*
// environment variables, then validates them.
func Load() (*Settings, error) {
	file, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}

	// Overlay the environment on a copy so the cached file config stays pristine
	cfg := *file
	if file.CanonicalDOI != nil {
		v := *file.CanonicalDOI
		cfg.CanonicalDOI = &v
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s := &Settings{
		OutputDir:    DefaultOutputDir,
		Format:       DefaultFormat,
		LogLevel:     DefaultLogLevel,
		CanonicalDOI: true,
		ConfigPath:   GlobalConfigPath(),
	}
	if cfg.OutputDir != "" {
		s.OutputDir = ExpandPath(cfg.OutputDir)
	}
	if cfg.Format != "" {
		s.Format = cfg.Format
	}
	if cfg.LogFile != "" {
		s.LogFile = ExpandPath(cfg.LogFile)
	}
	if cfg.LogLevel != "" {
		s.LogLevel = cfg.LogLevel
	}
	if cfg.CanonicalDOI != nil {
		s.CanonicalDOI = *cfg.CanonicalDOI
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the output format and log level.
func (s *Settings) Validate() error {
	if _, err := export.ParseFormat(s.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if s.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is empty", ErrInvalidConfig)
	}
	return nil
}

// ParseLogLevel validates a log level name such as "debug" or "warn".
func ParseLogLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level: %s", level)
	}
	return lvl, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
