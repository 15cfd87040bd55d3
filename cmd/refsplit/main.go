// Package main provides the refsplit CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/export"
	"github.com/matsen/refsplit/internal/importer"
	"github.com/matsen/refsplit/internal/logging"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// Persistent flags; config and environment supply the defaults.
var (
	flagOutDir      string
	flagFormat      string
	flagInputFormat string
	flagLogFile     string
	flagLogLevel    string
	flagStrictDOI   bool
	flagDryRun      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "refsplit",
	Short: "Reconcile bibliographic exports across sources",
	Long: `refsplit finds duplicate references within one citation export or
across two or three exports, and writes unique and duplicate records to
separate files.

Two records are duplicates when they share a DOI, or, when neither has a DOI,
when their normalized titles and publication years agree.

Input: CSV, TSV, JSON, JSONL or BibTeX with title, year, journal, authors and
doi columns. Output: CSV, TSV, JSONL, BibTeX or a SQLite result database.
All commands output JSON by default; use --human for tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	pf.StringVarP(&flagOutDir, "out", "o", "", "Output directory (default from config, else ./"+config.DefaultOutputDir+")")
	pf.StringVar(&flagFormat, "format", "", fmt.Sprintf("Output format %v", export.ValidFormats))
	pf.StringVar(&flagInputFormat, "input-format", "", fmt.Sprintf("Input format %v (default: by extension)", importer.ValidFormats))
	pf.StringVar(&flagLogFile, "log-file", "", "Append JSON logs to this file")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&flagStrictDOI, "strict-doi", false, "Compare DOIs exactly, without lower-casing or stripping resolver prefixes")
	pf.BoolVar(&flagDryRun, "dry-run", false, "Report what would be written without writing files")
	rootCmd.Version = Version
}

// runSettings is everything a reconciliation command needs, resolved from
// config, environment and flags.
type runSettings struct {
	RunID        string
	OutDir       string
	Format       export.Format
	InputFormat  importer.Format
	CanonicalDOI bool
	DryRun       bool
	Logger       *logging.Logger
}

// resolveSettings loads .env and the global config, then applies any flags
// the user set explicitly.
func resolveSettings(cmd *cobra.Command) (*config.Settings, error) {
	_ = godotenv.Load()

	s, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("out") {
		s.OutputDir = config.ExpandPath(flagOutDir)
	}
	if flags.Changed("format") {
		s.Format = flagFormat
	}
	if flags.Changed("log-file") {
		s.LogFile = config.ExpandPath(flagLogFile)
	}
	if flags.Changed("log-level") {
		s.LogLevel = flagLogLevel
	}
	if flags.Changed("strict-doi") {
		s.CanonicalDOI = !flagStrictDOI
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// mustRunSettings resolves settings and opens the logger, exits on error.
// The caller is responsible for calling Close() on the returned logger.
func mustRunSettings(cmd *cobra.Command) *runSettings {
	s, err := resolveSettings(cmd)
	if err != nil {
		exitWithError(exitCodeFor(err), "loading config: %v", err)
	}

	format, err := export.ParseFormat(s.Format)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	var inputFormat importer.Format
	if flagInputFormat != "" {
		inputFormat, err = importer.ParseFormat(flagInputFormat)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	runID := uuid.NewString()
	logger, err := logging.New(logging.Options{
		Level: s.LogLevel,
		File:  s.LogFile,
		RunID: runID,
	})
	if err != nil {
		exitWithError(ExitConfigError, "opening log: %v", err)
	}

	return &runSettings{
		RunID:        runID,
		OutDir:       s.OutputDir,
		Format:       format,
		InputFormat:  inputFormat,
		CanonicalDOI: s.CanonicalDOI,
		DryRun:       flagDryRun,
		Logger:       logger,
	}
}
