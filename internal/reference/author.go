package reference

import "strings"

// Author is one name from a free-text author list.
type Author struct {
	First string `json:"first"` // First/given name(s)
	Last  string `json:"last"`  // Last/family name
}

// String formats the author as "Last, First", or just Last.
func (a Author) String() string {
	switch {
	case a.First != "" && a.Last != "":
		return a.Last + ", " + a.First
	case a.Last != "":
		return a.Last
	default:
		return a.First
	}
}

// ParseAuthor reads "Last, First" or "First Last".
func ParseAuthor(s string) Author {
	s = strings.TrimSpace(s)
	if last, first, found := strings.Cut(s, ","); found {
		return Author{First: strings.TrimSpace(first), Last: strings.TrimSpace(last)}
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Author{}
	}
	return Author{
		First: strings.Join(fields[:len(fields)-1], " "),
		Last:  fields[len(fields)-1],
	}
}

// SplitAuthors splits a free-text author list on " and " (BibTeX style) or
// on semicolons. Empty entries are dropped.
func SplitAuthors(s string) []string {
	sep := ";"
	if strings.Contains(s, " and ") {
		sep = " and "
	}
	var out []string
	for _, a := range strings.Split(s, sep) {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// ParseAuthors parses every name of a free-text author list.
func ParseAuthors(s string) []Author {
	names := SplitAuthors(s)
	authors := make([]Author, len(names))
	for i, name := range names {
		authors[i] = ParseAuthor(name)
	}
	return authors
}

// JoinAuthors formats authors as "Last, First; Last, First".
func JoinAuthors(authors []Author, sep string) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.String()
	}
	return strings.Join(names, sep)
}
