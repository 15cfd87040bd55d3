package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PathMaxLen bounds file paths shown in human tables.
const PathMaxLen = 48

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable renders rows under headers in a rounded box.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// formatRunHuman renders a run summary as tables.
func formatRunHuman(resp *RunResponse) string {
	var sb strings.Builder

	mode := ""
	if resp.DryRun {
		mode = ", dry run"
	}
	fmt.Fprintf(&sb, "Run %s (%s%s)\n\n", resp.RunID, resp.Operation, mode)

	sourceRows := make([][]string, 0, len(resp.Sources))
	for _, s := range resp.Sources {
		sourceRows = append(sourceRows, []string{
			truncateString(s.Path, PathMaxLen),
			s.Format,
			s.Charset,
			humanize.Bytes(uint64(s.Size)),
			humanize.Comma(int64(s.Rows)),
			humanize.Comma(int64(s.Shared)),
			humanize.Comma(int64(s.Unique)),
		})
	}
	sb.WriteString(renderTable(
		[]string{"Source", "Format", "Charset", "Size", "Rows", "Duplicated", "Unique"},
		sourceRows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	sb.WriteString("\n\n")

	names := make([]string, 0, len(resp.Counts))
	for name := range resp.Counts {
		names = append(names, name)
	}
	sort.Strings(names)

	outputRows := make([][]string, 0, len(names))
	for _, name := range names {
		outputRows = append(outputRows, []string{
			name,
			humanize.Comma(int64(resp.Counts[name])),
			truncateString(resp.Outputs[name], PathMaxLen),
		})
	}
	sb.WriteString(renderTable(
		[]string{"Output", "Records", "Path"},
		outputRows,
		[]columnAlignment{alignLeft, alignRight, alignLeft},
	))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "%s duplicate rows of %s (by DOI: %s, by title+year: %s) in %s\n",
		humanize.Comma(int64(resp.Stats.Duplicates)),
		humanize.Comma(int64(resp.Stats.Input)),
		humanize.Comma(int64(resp.Stats.ByDOI)),
		humanize.Comma(int64(resp.Stats.ByTitleYear)),
		resp.Elapsed)
	return sb.String()
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
