package reconcile

import (
	"strings"

	"github.com/matsen/refsplit/internal/normalize"
	"github.com/matsen/refsplit/internal/reference"
)

// Tag addresses a row by its source set and position within that source.
type Tag struct {
	Source int
	Pos    int
}

// Prepared is a record with the keys derived for matching.
// Keys exist only while matching and never leave this package.
type Prepared struct {
	reference.Record
	Tag Tag

	Key     string // Normalized title
	IDKey   string // Identifier key, "" when the record has no DOI
	YearKey string
	YearOK  bool // False for missing or unparseable years
}

// Options control how keys are derived.
type Options struct {
	// CanonicalDOI compares identifiers case-insensitively with resolver
	// prefixes removed. When false, identifiers are compared after trimming.
	CanonicalDOI bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{CanonicalDOI: true}
}

// Prepare selects the retained columns of t, validates them, and derives
// matching keys. Output order matches input order; t is not modified.
func Prepare(src int, t reference.Table, opts Options) ([]Prepared, error) {
	idx, missing := columnIndex(t.Columns)
	if len(missing) > 0 {
		return nil, &SchemaError{Source: t.Name, Missing: missing}
	}

	out := make([]Prepared, len(t.Rows))
	for i := range t.Rows {
		var rec reference.Record
		for _, col := range reference.Columns {
			rec.Set(col, t.Cell(i, idx[col]))
		}
		if !rec.Title.Valid {
			return nil, &MalformedFieldError{Source: t.Name, Row: i + 1, Field: reference.ColTitle}
		}

		p := Prepared{
			Record: rec,
			Tag:    Tag{Source: src, Pos: i},
			Key:    normalize.Title(rec.Title.Text),
			IDKey:  identifierKey(rec.DOI, opts),
		}
		if rec.Year.Valid {
			p.YearKey, p.YearOK = normalize.Year(rec.Year.Text)
		}
		out[i] = p
	}
	return out, nil
}

// columnIndex maps each retained column to its position in cols.
// Names match case-insensitively; the first occurrence wins.
func columnIndex(cols []string) (map[string]int, []string) {
	idx := make(map[string]int, len(reference.Columns))
	for i, c := range cols {
		name := strings.ToLower(strings.TrimSpace(c))
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range reference.Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return idx, missing
}

func identifierKey(v reference.Value, opts Options) string {
	if v.IsBlank() {
		return ""
	}
	if opts.CanonicalDOI {
		return normalize.DOI(v.Text)
	}
	return strings.TrimSpace(v.Text)
}
