package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/refsplit/internal/reference"
)

// Format names an output format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatJSONL  Format = "jsonl"
	FormatBibTeX Format = "bibtex"
	FormatSQLite Format = "sqlite"
)

// ValidFormats lists the accepted --format values.
var ValidFormats = []Format{FormatCSV, FormatTSV, FormatJSONL, FormatBibTeX, FormatSQLite}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidFormats {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format: %s (valid: %v)", s, ValidFormats)
}

// Extension returns the file extension for a format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatTSV:
		return ".tsv"
	case FormatJSONL:
		return ".jsonl"
	case FormatBibTeX:
		return ".bib"
	case FormatSQLite:
		return ".db"
	default:
		return ".csv"
	}
}

// Sink receives named result tables, e.g. "unique_in_a" or "duplicates".
type Sink interface {
	WriteTable(name string, recs []reference.Record) error
	Close() error
}

// Write encodes records to w in a file format. SQLite is not a stream
// format and is rejected here.
func Write(w io.Writer, f Format, recs []reference.Record) error {
	switch f {
	case FormatCSV:
		return writeDelimited(w, ',', recs)
	case FormatTSV:
		return writeDelimited(w, '\t', recs)
	case FormatJSONL:
		return writeJSONL(w, recs)
	case FormatBibTeX:
		_, err := io.WriteString(w, ToBibTeXList(recs))
		return err
	default:
		return fmt.Errorf("format %s cannot be streamed", f)
	}
}

// writeDelimited writes a header of the retained columns and one row per
// record. Null cells are written empty.
func writeDelimited(w io.Writer, comma rune, recs []reference.Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(reference.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(reference.Columns))
	for i, r := range recs {
		for j, v := range r.Cells() {
			row[j] = v.String()
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSONL(w io.Writer, recs []reference.Record) error {
	enc := json.NewEncoder(w)
	for i, r := range recs {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding record %d: %w", i+1, err)
		}
	}
	return nil
}

// DirSink writes each table to <dir>/<name><ext>.
type DirSink struct {
	dir    string
	format Format
	paths  []string
}

// NewDirSink creates dir if needed and returns a sink writing files into it.
func NewDirSink(dir string, f Format) (*DirSink, error) {
	if f == FormatSQLite {
		return nil, fmt.Errorf("format %s needs a database sink", f)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &DirSink{dir: dir, format: f}, nil
}

// WriteTable writes one table file, replacing any existing file.
func (s *DirSink) WriteTable(name string, recs []reference.Record) error {
	path := filepath.Join(s.dir, name+s.format.Extension())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, s.format, recs); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	s.paths = append(s.paths, path)
	return nil
}

// Paths returns the files written so far, in write order.
func (s *DirSink) Paths() []string {
	return s.paths
}

// Close is a no-op; files are closed as they are written.
func (s *DirSink) Close() error {
	return nil
}
