package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(splitCmd)
}

var splitCmd = &cobra.Command{
	Use:   "split <a> <b> [c]",
	Short: "Split two or three files into unique and shared records",
	Long: `Match two or three citation exports against each other.

A record is shared when it has a duplicate partner anywhere in the combined
input, including inside its own file. Writes to the output directory:
  unique_in_a, unique_in_b[, unique_in_c]  rows found only in that file
  duplicates                               all shared rows, identical rows once
  merged                                   every file's unique rows together

Usage:
  refsplit split scopus.csv wos.csv
  refsplit split scopus.csv wos.csv pubmed.jsonl --format sqlite
  refsplit split a.bib b.bib --strict-doi --human`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runSplit,
}

func runSplit(cmd *cobra.Command, args []string) error {
	rs := mustRunSettings(cmd)
	defer rs.Logger.Close()

	resp, err := executeSplit(rs, args)
	if err != nil {
		rs.Logger.Error().Err(err).Msg("split failed")
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		outputHuman("%s", formatRunHuman(resp))
		return nil
	}
	return outputJSON(resp)
}
