package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matsen/refsplit/internal/reference"
)

// FlexibleValue unmarshals a cell from a string, number, bool, null, or a
// list of author names or {first, last} author objects.
type FlexibleValue reference.Value

func (f *FlexibleValue) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = FlexibleValue(reference.Null)
		return nil
	}

	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleValue(reference.Str(s))
		return nil
	}

	// Try number, keeping its original text
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleValue(reference.Str(n.String()))
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexibleValue(reference.Str(fmt.Sprint(b)))
		return nil
	}

	// Author lists, as exported by reference managers
	var names []authorName
	if err := json.Unmarshal(data, &names); err == nil {
		parts := make([]string, 0, len(names))
		for _, a := range names {
			if a.String() != "" {
				parts = append(parts, a.String())
			}
		}
		*f = FlexibleValue(reference.Str(strings.Join(parts, "; ")))
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into a table cell", string(data))
}

// Value returns the decoded cell.
func (f FlexibleValue) Value() reference.Value {
	return reference.Value(f)
}

// authorName is either a plain string or a {first, last} object.
type authorName struct {
	reference.Author
	Name string `json:"-"`
}

func (a *authorName) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &a.Name); err == nil {
		return nil
	}
	return json.Unmarshal(data, &a.Author)
}

func (a authorName) String() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Author.String()
}

// columnSet accumulates column names in order of first appearance.
type columnSet struct {
	names []string
	index map[string]int
}

func newColumnSet() *columnSet {
	return &columnSet{index: make(map[string]int)}
}

func (c *columnSet) add(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	c.index[name] = len(c.names)
	c.names = append(c.names, name)
	return c.index[name]
}

// objectRows collects decoded objects into a table once all columns are known.
type objectRows struct {
	cols *columnSet
	rows []map[int]reference.Value
}

func (o *objectRows) table() reference.Table {
	t := reference.Table{Columns: o.cols.names, Rows: make([][]reference.Value, len(o.rows))}
	for i, obj := range o.rows {
		row := make([]reference.Value, len(o.cols.names))
		for j, v := range obj {
			row[j] = v
		}
		t.Rows[i] = row
	}
	return t
}

// decodeObject reads one JSON object, preserving key order.
func (o *objectRows) decodeObject(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	obj := make(map[int]reference.Value)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var v FlexibleValue
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		obj[o.cols.add(key)] = v.Value()
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	o.rows = append(o.rows, obj)
	return nil
}

// ParseJSON parses a JSON array of flat objects. Columns are the union of
// keys in order of first appearance; absent keys read as null.
func ParseJSON(data []byte) (reference.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return reference.Table{}, fmt.Errorf("parsing JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return reference.Table{}, fmt.Errorf("parsing JSON: expected an array of objects")
	}

	rows := &objectRows{cols: newColumnSet()}
	for dec.More() {
		if err := rows.decodeObject(dec); err != nil {
			return reference.Table{}, fmt.Errorf("entry %d: %w", len(rows.rows)+1, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return reference.Table{}, fmt.Errorf("parsing JSON: %w", err)
	}
	return rows.table(), nil
}

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ParseJSONL parses one flat JSON object per line. Empty lines are skipped.
func ParseJSONL(data []byte) (reference.Table, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	rows := &objectRows{cols: newColumnSet()}
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := rows.decodeObject(dec); err != nil {
			return reference.Table{}, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return reference.Table{}, fmt.Errorf("reading JSONL: %w", err)
	}
	return rows.table(), nil
}
