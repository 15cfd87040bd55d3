// Package export writes reconciled records to downloadable formats.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/refsplit/internal/normalize"
	"github.com/matsen/refsplit/internal/reference"
)

// ToBibTeX converts a record to a BibTeX entry with the given citation key.
// Null fields are omitted.
func ToBibTeX(key string, r reference.Record) string {
	entryType := determineEntryType(r)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, key))

	// Authors
	if !r.Authors.IsBlank() {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(r.Authors.Text)))
	}

	// Title
	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(r.Title.String())))

	// Venue
	if !r.Journal.IsBlank() {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(r.Journal.Text)))
	}

	// Year
	if year, ok := normalize.Year(r.Year.String()); ok {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", year))
	} else if !r.Year.IsBlank() {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", escapeLatex(strings.TrimSpace(r.Year.Text))))
	}

	// DOI (optional)
	if !r.DOI.IsBlank() {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", strings.TrimSpace(r.DOI.Text)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts records to BibTeX, generating unique citation keys.
func ToBibTeXList(recs []reference.Record) string {
	used := make(map[string]bool, len(recs))
	entries := make([]string, 0, len(recs))
	for _, r := range recs {
		key := uniqueKey(used, citeKey(r))
		entries = append(entries, ToBibTeX(key, r))
	}
	return strings.Join(entries, "\n")
}

// citeKey builds a key like "Smith2020-study" from author, year, and title.
func citeKey(r reference.Record) string {
	author := "Anon"
	if authors := reference.ParseAuthors(r.Authors.String()); len(authors) > 0 {
		if w := keyWord(authors[0].Last); w != "" {
			author = strings.ToUpper(w[:1]) + w[1:]
		}
	}

	year, _ := normalize.Year(r.Year.String())

	word := ""
	for _, w := range strings.Fields(normalize.Title(r.Title.String())) {
		if len(w) > 3 {
			word = w
			break
		}
	}

	key := author + year
	if word != "" {
		key += "-" + word
	}
	return key
}

// keyWord reduces a name to ASCII letters and digits.
func keyWord(s string) string {
	s = strings.ReplaceAll(normalize.Title(s), " ", "")
	return strings.ReplaceAll(s, "_", "")
}

// uniqueKey returns base, or base-2, base-3, ... if base is taken.
func uniqueKey(used map[string]bool, base string) string {
	key := base
	// Start at 2: base is taken, so first duplicate becomes base-2
	for i := 2; used[key]; i++ {
		key = fmt.Sprintf("%s-%d", base, i)
	}
	used[key] = true
	return key
}

// determineEntryType returns the BibTeX entry type for a record.
func determineEntryType(r reference.Record) string {
	venue := strings.ToLower(r.Journal.String())

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	// Default to article
	return "article"
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors string) string {
	return escapeLatex(reference.JoinAuthors(reference.ParseAuthors(authors), " and "))
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
