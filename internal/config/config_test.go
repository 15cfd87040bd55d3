package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoad_Defaults(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %q, want %q", s.OutputDir, DefaultOutputDir)
	}
	if s.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", s.Format, DefaultFormat)
	}
	if s.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", s.LogLevel, DefaultLogLevel)
	}
	if s.LogFile != "" {
		t.Errorf("LogFile = %q, want empty", s.LogFile)
	}
	if !s.CanonicalDOI {
		t.Error("CanonicalDOI = false, want true by default")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	writeGlobalConfig(t, `format: jsonl
log_level: debug
canonical_doi: true
`)
	t.Setenv("REFSPLIT_FORMAT", "bibtex")
	t.Setenv("REFSPLIT_CANONICAL_DOI", "false")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Format != "bibtex" {
		t.Errorf("Format = %q, want bibtex (env)", s.Format)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug (file)", s.LogLevel)
	}
	if s.CanonicalDOI {
		t.Error("CanonicalDOI = true, want false (env)")
	}

	// The cached file config is untouched by the overlay
	cfg, _ := LoadGlobalConfig()
	if cfg.Format != "jsonl" || cfg.CanonicalDOI == nil || !*cfg.CanonicalDOI {
		t.Errorf("cached config mutated: %+v", cfg)
	}
}

func TestLoad_ExpandsTilde(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	writeGlobalConfig(t, "output_dir: ~/results\nlog_file: ~/results/app.log\n")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(home, "results"); s.OutputDir != want {
		t.Errorf("OutputDir = %q, want %q", s.OutputDir, want)
	}
	if want := filepath.Join(home, "results", "app.log"); s.LogFile != want {
		t.Errorf("LogFile = %q, want %q", s.LogFile, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{"bad format in file", "format: xlsx\n", nil},
		{"bad level in env", "", map[string]string{"REFSPLIT_LOG_LEVEL": "loud"}},
		{"bad bool in env", "", map[string]string{"REFSPLIT_CANONICAL_DOI": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetGlobalConfigCache()
			defer ResetGlobalConfigCache()

			writeGlobalConfig(t, tt.file)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"verbose", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := ParseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
		{"~", home},
		{"~/out", filepath.Join(home, "out")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
