package importer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/matsen/refsplit/internal/reference"
)

var (
	// Symbol accents with a letter argument: \'e, \'{e}, {\"o}
	accentSymbolRe = regexp.MustCompile(`\\['"^` + "`" + `~=.]\s*\{?([A-Za-z])\}?`)
	// Letter accents: \c{c}, \v s
	accentLetterRe = regexp.MustCompile(`\\[uvHckrbd](?:\{([A-Za-z])\}|\s+([A-Za-z]))`)
	// Remaining control words: \textit, \emph, ...
	latexCommandRe = regexp.MustCompile(`\\[A-Za-z]+\s*`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// bibEntry is one parsed @type{key, ...} entry.
type bibEntry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// ParseBibTeX parses BibTeX entries into a table with the retained columns.
// The journal column falls back to booktitle; absent fields are null.
// @comment, @preamble and @string blocks are skipped.
func ParseBibTeX(data []byte) (reference.Table, error) {
	entries, err := scanBibTeX(string(data))
	if err != nil {
		return reference.Table{}, err
	}

	t := reference.Table{Columns: append([]string(nil), reference.Columns...)}
	for _, e := range entries {
		var rec reference.Record
		rec.Title = bibField(e, "title")
		rec.Year = bibField(e, "year")
		rec.Journal = bibField(e, "journal")
		if !rec.Journal.Valid {
			rec.Journal = bibField(e, "booktitle")
		}
		rec.Authors = bibField(e, "author")
		rec.DOI = bibField(e, "doi")
		t.Rows = append(t.Rows, rec.Cells())
	}
	return t, nil
}

func bibField(e bibEntry, name string) reference.Value {
	raw, ok := e.Fields[name]
	if !ok {
		return reference.Null
	}
	return reference.Str(unLaTeX(raw))
}

// unLaTeX turns common LaTeX markup into plain text.
func unLaTeX(s string) string {
	s = accentSymbolRe.ReplaceAllString(s, "$1")
	s = accentLetterRe.ReplaceAllString(s, "$1$2")
	s = strings.NewReplacer(`\&`, "&", `\%`, "%", `\$`, "$", `\#`, "#", `\_`, "_", `--`, "-").Replace(s)
	s = latexCommandRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// bibScanner walks BibTeX source one byte at a time.
type bibScanner struct {
	src  string
	pos  int
	line int
}

func scanBibTeX(src string) ([]bibEntry, error) {
	s := &bibScanner{src: src, line: 1}
	var entries []bibEntry

	for {
		at := strings.IndexByte(s.src[s.pos:], '@')
		if at < 0 {
			return entries, nil
		}
		s.advance(at + 1)

		typ := strings.ToLower(s.readIdent())
		s.skipSpace()
		if s.eof() || (s.peek() != '{' && s.peek() != '(') {
			continue // Stray @, e.g. inside an email address between entries
		}
		open := s.next()
		closer := byte('}')
		if open == '(' {
			closer = ')'
		}

		switch typ {
		case "comment", "preamble", "string":
			if _, err := s.readBalanced(open, closer); err != nil {
				return nil, err
			}
			continue
		}

		entry, err := s.readEntry(typ, closer)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
}

func (s *bibScanner) readEntry(typ string, closer byte) (bibEntry, error) {
	startLine := s.line
	e := bibEntry{Type: typ, Fields: make(map[string]string)}

	s.skipSpace()
	keyStart := s.pos
	for !s.eof() && s.peek() != ',' && s.peek() != closer {
		s.next()
	}
	e.Key = strings.TrimSpace(s.src[keyStart:s.pos])

	for {
		s.skipSpace()
		if s.eof() {
			return bibEntry{}, fmt.Errorf("line %d: unterminated entry %q", startLine, e.Key)
		}
		switch s.peek() {
		case ',':
			s.next()
			continue
		case closer:
			s.next()
			return e, nil
		}

		name := strings.ToLower(s.readIdent())
		if name == "" {
			return bibEntry{}, fmt.Errorf("line %d: expected field name in entry %q", s.line, e.Key)
		}
		s.skipSpace()
		if s.eof() || s.peek() != '=' {
			return bibEntry{}, fmt.Errorf("line %d: expected '=' after field %q", s.line, name)
		}
		s.next()

		value, err := s.readValue(closer)
		if err != nil {
			return bibEntry{}, err
		}
		if _, dup := e.Fields[name]; !dup {
			e.Fields[name] = value
		}
	}
}

// readValue reads a field value: {...}, "...", or a bare token, joined by #.
func (s *bibScanner) readValue(closer byte) (string, error) {
	var parts []string
	for {
		s.skipSpace()
		if s.eof() {
			return "", fmt.Errorf("line %d: unexpected end of input in field value", s.line)
		}
		switch s.peek() {
		case '{':
			s.next()
			v, err := s.readBalanced('{', '}')
			if err != nil {
				return "", err
			}
			parts = append(parts, v)
		case '"':
			s.next()
			v, err := s.readQuoted()
			if err != nil {
				return "", err
			}
			parts = append(parts, v)
		default:
			start := s.pos
			for !s.eof() && s.peek() != ',' && s.peek() != closer && s.peek() != '#' && !isSpace(s.peek()) {
				s.next()
			}
			parts = append(parts, s.src[start:s.pos])
		}

		s.skipSpace()
		if !s.eof() && s.peek() == '#' {
			s.next()
			continue
		}
		return strings.Join(parts, ""), nil
	}
}

// readBalanced returns the text up to the matching closer; the opener is already consumed.
func (s *bibScanner) readBalanced(open, closer byte) (string, error) {
	startLine := s.line
	depth := 1
	start := s.pos
	for !s.eof() {
		c := s.next()
		switch c {
		case '\\':
			if !s.eof() {
				s.next()
			}
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s.src[start : s.pos-1], nil
			}
		}
	}
	return "", fmt.Errorf("line %d: unbalanced %q", startLine, string(open))
}

func (s *bibScanner) readQuoted() (string, error) {
	startLine := s.line
	start := s.pos
	depth := 0
	for !s.eof() {
		c := s.next()
		switch c {
		case '\\':
			if !s.eof() {
				s.next()
			}
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				return s.src[start : s.pos-1], nil
			}
		}
	}
	return "", fmt.Errorf("line %d: unterminated quoted value", startLine)
}

func (s *bibScanner) readIdent() string {
	start := s.pos
	for !s.eof() {
		c := rune(s.peek())
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '-' && c != ':' && c != '.' {
			break
		}
		s.next()
	}
	return s.src[start:s.pos]
}

func (s *bibScanner) skipSpace() {
	for !s.eof() && isSpace(s.peek()) {
		s.next()
	}
}

func (s *bibScanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *bibScanner) peek() byte {
	return s.src[s.pos]
}

func (s *bibScanner) advance(n int) {
	for i := 0; i < n; i++ {
		s.next()
	}
}

func (s *bibScanner) next() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
