package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSourceCount is returned when a split is requested with fewer than two
// or more than three sources.
var ErrSourceCount = errors.New("split requires two or three sources")

// SchemaError reports required columns missing from an input table.
type SchemaError struct {
	Source  string   // Table name
	Missing []string // Required column names not found
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", sourceLabel(e.Source), strings.Join(e.Missing, ", "))
}

// MalformedFieldError reports a null cell where a value is required.
type MalformedFieldError struct {
	Source string // Table name
	Row    int    // Data row number (1-indexed, header excluded)
	Field  string // Column name
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("%s: row %d: field %q is empty", sourceLabel(e.Source), e.Row, e.Field)
}

// IsDataError reports whether err is a schema or field error raised by
// validating input, as opposed to a usage error.
func IsDataError(err error) bool {
	var schemaErr *SchemaError
	var fieldErr *MalformedFieldError
	return errors.As(err, &schemaErr) || errors.As(err, &fieldErr)
}

func sourceLabel(name string) string {
	if name == "" {
		return "input"
	}
	return name
}
