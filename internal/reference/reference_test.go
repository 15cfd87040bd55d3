package reference

import (
	"encoding/json"
	"testing"
)

func TestValue_JSON(t *testing.T) {
	rec := Record{Title: Str("T"), Year: Null, DOI: Str("")}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"title":"T","year":null,"journal":null,"authors":null,"doi":""}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var got Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != rec {
		t.Errorf("Unmarshal() = %+v, want %+v", got, rec)
	}
}

func TestValue_UnmarshalRejectsNumbers(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`2020`), &v); err == nil {
		t.Error("Unmarshal(2020) expected error")
	}
}

func TestValue_IsBlank(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Null, true},
		{Str(""), true},
		{Str("  "), true},
		{Str("x"), false},
	}
	for _, tt := range tests {
		if got := tt.v.IsBlank(); got != tt.want {
			t.Errorf("%+v.IsBlank() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestRecord_GetSet(t *testing.T) {
	var r Record
	for i, col := range Columns {
		r.Set(col, Str(string(rune('a'+i))))
	}
	r.Set("abstract", Str("ignored"))

	for i, col := range Columns {
		want := string(rune('a' + i))
		if got := r.Get(col); got != Str(want) {
			t.Errorf("Get(%q) = %+v, want %q", col, got, want)
		}
		if got := r.Cells()[i]; got != Str(want) {
			t.Errorf("Cells()[%d] = %+v, want %q", i, got, want)
		}
	}
	if got := r.Get("abstract"); got != Null {
		t.Errorf("Get(abstract) = %+v, want Null", got)
	}
}

func TestTable_Cell(t *testing.T) {
	tbl := FromRecords("x", []Record{{Title: Str("T")}})

	if tbl.Name != "x" || len(tbl.Columns) != len(Columns) {
		t.Fatalf("FromRecords() = %+v", tbl)
	}
	if got := tbl.Cell(0, 0); got != Str("T") {
		t.Errorf("Cell(0, 0) = %+v, want T", got)
	}
	for _, ij := range [][2]int{{-1, 0}, {1, 0}, {0, 99}} {
		if got := tbl.Cell(ij[0], ij[1]); got != Null {
			t.Errorf("Cell(%d, %d) = %+v, want Null", ij[0], ij[1], got)
		}
	}

	// Columns are copied, not shared
	tbl.Columns[0] = "changed"
	if Columns[0] != ColTitle {
		t.Error("FromRecords() shares the Columns slice")
	}
}

func TestParseAuthor(t *testing.T) {
	tests := []struct {
		input string
		want  Author
	}{
		{"Smith, John", Author{First: "John", Last: "Smith"}},
		{"John Smith", Author{First: "John", Last: "Smith"}},
		{"John Q. Public", Author{First: "John Q.", Last: "Public"}},
		{"Plato", Author{Last: "Plato"}},
		{"van der Berg, Anna", Author{First: "Anna", Last: "van der Berg"}},
		{"   ", Author{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseAuthor(tt.input); got != tt.want {
				t.Errorf("ParseAuthor(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Smith, J; Doe, J", []string{"Smith, J", "Doe, J"}},
		{"Smith, J and Doe, J", []string{"Smith, J", "Doe, J"}},
		{"Single Author", []string{"Single Author"}},
		{" ; ", nil},
	}

	for _, tt := range tests {
		got := SplitAuthors(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("SplitAuthors(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitAuthors(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}

func TestJoinAuthors(t *testing.T) {
	authors := ParseAuthors("Jane Roe and Doe, John and Plato")
	if got, want := JoinAuthors(authors, "; "), "Roe, Jane; Doe, John; Plato"; got != want {
		t.Errorf("JoinAuthors() = %q, want %q", got, want)
	}
}
