package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/matsen/refsplit/internal/reference"
)

// nullMarkers are cell texts read as missing, matching what spreadsheet and
// dataframe tools write for empty values.
var nullMarkers = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"<NA>":     true,
	"N/A":      true,
	"n/a":      true,
	"NA":       true,
	"NULL":     true,
	"null":     true,
	"NaN":      true,
	"nan":      true,
	"-NaN":     true,
	"-nan":     true,
	"None":     true,
}

// ParseDelimited parses UTF-8 delimited text with a header row.
// Rows may be shorter or longer than the header; missing cells are null
// and extra cells are dropped.
func ParseDelimited(data []byte, comma rune) (reference.Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return reference.Table{}, fmt.Errorf("empty file: no header row")
	}
	if err != nil {
		return reference.Table{}, fmt.Errorf("reading header: %w", err)
	}

	t := reference.Table{Columns: header}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return reference.Table{}, fmt.Errorf("reading row %d: %w", len(t.Rows)+1, err)
		}
		if isBlankRecord(record) {
			continue
		}

		row := make([]reference.Value, len(header))
		for j := range row {
			if j < len(record) {
				row[j] = cellValue(record[j])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func cellValue(s string) reference.Value {
	if nullMarkers[s] {
		return reference.Null
	}
	return reference.Str(s)
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if f != "" {
			return false
		}
	}
	return true
}
