// Package importer decodes citation exports into tables for reconciliation.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/refsplit/internal/reference"
)

// Format names an input file format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatBibTeX Format = "bibtex"
)

// ErrMalformedInput wraps every decoding failure of an input file's contents.
var ErrMalformedInput = errors.New("malformed input")

// ValidFormats lists the accepted --input-format values.
var ValidFormats = []Format{FormatCSV, FormatTSV, FormatJSON, FormatJSONL, FormatBibTeX}

// Detect picks a format from the file extension. Unknown extensions read as CSV.
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".bib", ".bibtex":
		return FormatBibTeX
	default:
		return FormatCSV
	}
}

// ParseFormat validates a user-supplied format name. Empty means auto-detect.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return "", nil
	}
	f := Format(strings.ToLower(s))
	for _, valid := range ValidFormats {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown input format: %s (valid: %v)", s, ValidFormats)
}

// Source is a decoded input file.
type Source struct {
	Table   reference.Table
	Format  Format
	Charset string // Charset the raw bytes were decoded from
	Size    int64  // Raw size in bytes
}

// Load reads and decodes the file at path. An empty format auto-detects.
// The table is named after the file's base name.
func Load(path string, format Format) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if format == "" {
		format = Detect(path)
	}
	return Parse(filepath.Base(path), format, data)
}

// Parse decodes raw bytes in the given format.
func Parse(name string, format Format, raw []byte) (*Source, error) {
	data, charset, err := DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrMalformedInput, name, err)
	}

	var t reference.Table
	switch format {
	case FormatCSV:
		t, err = ParseDelimited(data, ',')
	case FormatTSV:
		t, err = ParseDelimited(data, '\t')
	case FormatJSON:
		t, err = ParseJSON(data)
	case FormatJSONL:
		t, err = ParseJSONL(data)
	case FormatBibTeX:
		t, err = ParseBibTeX(data)
	default:
		return nil, fmt.Errorf("unknown input format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrMalformedInput, name, err)
	}
	t.Name = name
	return &Source{Table: t, Format: format, Charset: charset, Size: int64(len(raw))}, nil
}
