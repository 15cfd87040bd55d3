package main

import (
	"os"

	"github.com/matsen/refsplit/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration refsplit would run with.

Values come from, in increasing priority: built-in defaults, the global
config file, REFSPLIT_* environment variables (a .env file in the working
directory is loaded first), then command-line flags.

Usage:
  refsplit config
  refsplit config --format jsonl --human`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	config.Settings
	ConfigExists bool `json:"config_exists"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		exitWithError(exitCodeFor(err), "loading config: %v", err)
	}

	resp := ConfigResponse{Settings: *s}
	if _, err := os.Stat(s.ConfigPath); err == nil {
		resp.ConfigExists = true
	}

	if humanOutput {
		outputHuman("output_dir:    %s\n", s.OutputDir)
		outputHuman("format:        %s\n", s.Format)
		outputHuman("log_file:      %s\n", s.LogFile)
		outputHuman("log_level:     %s\n", s.LogLevel)
		outputHuman("canonical_doi: %t\n", s.CanonicalDOI)
		if !resp.ConfigExists {
			outputHuman("\nNo config file found.\n\n%s\n", config.HelpfulConfigMessage())
		} else {
			outputHuman("\nConfig file: %s\n", s.ConfigPath)
		}
		return nil
	}
	return outputJSON(resp)
}
