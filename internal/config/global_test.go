package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeGlobalConfig points XDG_CONFIG_HOME at a temp dir holding content.
func writeGlobalConfig(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	configFile := filepath.Join(configDir, GlobalConfigFile)
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return configFile
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/refsplit/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Empty XDG_CONFIG_HOME falls back to ~/.config
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "refsplit", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.Format != "" || cfg.CanonicalDOI != nil {
		t.Errorf("LoadGlobalConfig() = %+v, want empty config", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	writeGlobalConfig(t, `output_dir: /tmp/out
format: jsonl
log_file: /tmp/out/app.log
log_level: debug
canonical_doi: false
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q, want /tmp/out", cfg.OutputDir)
	}
	if cfg.Format != "jsonl" {
		t.Errorf("Format = %q, want jsonl", cfg.Format)
	}
	if cfg.LogFile != "/tmp/out/app.log" {
		t.Errorf("LogFile = %q, want /tmp/out/app.log", cfg.LogFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.CanonicalDOI == nil || *cfg.CanonicalDOI {
		t.Errorf("CanonicalDOI = %v, want false", cfg.CanonicalDOI)
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	writeGlobalConfig(t, "format: [unterminated")

	_, err := LoadGlobalConfig()
	if err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestGlobalConfigCache(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	configFile := writeGlobalConfig(t, "format: tsv\n")

	cfg1, _ := LoadGlobalConfig()
	if cfg1.Format != "tsv" {
		t.Errorf("First load: Format = %q, want tsv", cfg1.Format)
	}

	if err := os.WriteFile(configFile, []byte("format: bibtex\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Second load should return cached value
	cfg2, _ := LoadGlobalConfig()
	if cfg2.Format != "tsv" {
		t.Errorf("Second load: Format = %q, want tsv (cached)", cfg2.Format)
	}

	ResetGlobalConfigCache()

	cfg3, _ := LoadGlobalConfig()
	if cfg3.Format != "bibtex" {
		t.Errorf("Third load: Format = %q, want bibtex", cfg3.Format)
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	msg := HelpfulConfigMessage()
	if !strings.Contains(msg, "/custom/config/refsplit/config.yml") {
		t.Errorf("HelpfulConfigMessage() missing config path:\n%s", msg)
	}
	if !strings.Contains(msg, "REFSPLIT_FORMAT") {
		t.Errorf("HelpfulConfigMessage() missing env override hint:\n%s", msg)
	}
}
