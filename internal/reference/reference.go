// Package reference defines the core domain types for bibliographic records.
package reference

import (
	"encoding/json"
	"strings"
)

// Column names of the retained record schema.
const (
	ColTitle   = "title"
	ColYear    = "year"
	ColJournal = "journal"
	ColAuthors = "authors"
	ColDOI     = "doi"
)

// Columns is the fixed, ordered column set every output record carries.
var Columns = []string{ColTitle, ColYear, ColJournal, ColAuthors, ColDOI}

// Value is a single table cell that may be absent.
// Valid is false for null cells (empty CSV cell, JSON null, missing key).
type Value struct {
	Text  string
	Valid bool
}

// Str returns a present Value holding s.
func Str(s string) Value {
	return Value{Text: s, Valid: true}
}

// Null is the absent Value.
var Null = Value{}

// IsBlank reports whether the value is absent or only whitespace.
func (v Value) IsBlank() bool {
	return !v.Valid || strings.TrimSpace(v.Text) == ""
}

// String returns the cell text, or "" for a null cell.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return v.Text
}

// MarshalJSON encodes a null cell as JSON null and a present cell as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Str(s)
	return nil
}

// Record is a bibliographic row reduced to the retained columns.
// Records are comparable; two records are equal when every cell matches.
type Record struct {
	Title   Value `json:"title"`
	Year    Value `json:"year"`
	Journal Value `json:"journal"`
	Authors Value `json:"authors"`
	DOI     Value `json:"doi"`
}

// Get returns the cell for a retained column name.
func (r Record) Get(col string) Value {
	switch col {
	case ColTitle:
		return r.Title
	case ColYear:
		return r.Year
	case ColJournal:
		return r.Journal
	case ColAuthors:
		return r.Authors
	case ColDOI:
		return r.DOI
	}
	return Null
}

// Set assigns the cell for a retained column name. Unknown columns are ignored.
func (r *Record) Set(col string, v Value) {
	switch col {
	case ColTitle:
		r.Title = v
	case ColYear:
		r.Year = v
	case ColJournal:
		r.Journal = v
	case ColAuthors:
		r.Authors = v
	case ColDOI:
		r.DOI = v
	}
}

// Cells returns the record's values in Columns order.
func (r Record) Cells() []Value {
	return []Value{r.Title, r.Year, r.Journal, r.Authors, r.DOI}
}

// Table is a decoded tabular input with arbitrary columns.
// Every row is aligned with Columns; short rows read as null cells.
type Table struct {
	Name    string // Label used in errors and logs (usually the file name)
	Columns []string
	Rows    [][]Value
}

// Cell returns the value at row i for column index j, or Null if out of range.
func (t Table) Cell(i, j int) Value {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return Null
	}
	return t.Rows[i][j]
}

// FromRecords builds a Table with the retained columns from records.
func FromRecords(name string, recs []Record) Table {
	t := Table{
		Name:    name,
		Columns: append([]string(nil), Columns...),
		Rows:    make([][]Value, len(recs)),
	}
	for i, r := range recs {
		t.Rows[i] = r.Cells()
	}
	return t
}
