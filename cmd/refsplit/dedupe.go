package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <file>",
	Short: "Remove duplicate records from one file",
	Long: `Remove duplicate records from one citation export.

Writes two tables to the output directory:
  unique_records   the file with later repeats removed (first occurrence kept)
  duplicates_only  every row that duplicates another row, identical rows once

Usage:
  refsplit dedupe library.csv
  refsplit dedupe library.bib --format bibtex --out cleaned/
  refsplit dedupe library.csv --dry-run --human`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupe,
}

func runDedupe(cmd *cobra.Command, args []string) error {
	rs := mustRunSettings(cmd)
	defer rs.Logger.Close()

	resp, err := executeDedupe(rs, args[0])
	if err != nil {
		rs.Logger.Error().Err(err).Msg("dedupe failed")
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		outputHuman("%s", formatRunHuman(resp))
		return nil
	}
	return outputJSON(resp)
}
