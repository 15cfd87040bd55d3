// Package normalize derives the comparison keys used for duplicate matching.
//
// Keys are pure functions of their input and carry no shared state, so they
// are safe to compute from any number of goroutines.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// doiPrefixes are resolver prefixes stripped from identifiers, checked after lower-casing.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"dx.doi.org/",
	"doi:",
}

// Title converts a raw title into its comparison key: ASCII-folded,
// punctuation replaced by spaces, lower-cased, whitespace collapsed.
func Title(raw string) string {
	s := ToASCII(raw)
	s = nonWordRe.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ToASCII transliterates s to its closest ASCII approximation.
// Combining marks are dropped first ("é" -> "e"); whatever is still
// non-ASCII (other scripts, dashes, ligatures) goes through unidecode.
func ToASCII(s string) string {
	// Chains hold buffers, so each call gets its own.
	strip := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(strip, s)
	if err != nil {
		folded = s
	}
	if isASCII(folded) {
		return folded
	}
	return unidecode.Unidecode(folded)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// DOI canonicalizes an identifier for comparison.
// Removes resolver prefixes like "https://doi.org/" and lowercases.
func DOI(raw string) string {
	doi := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range doiPrefixes {
		if strings.HasPrefix(doi, prefix) {
			doi = strings.TrimSpace(strings.TrimPrefix(doi, prefix))
			break
		}
	}
	return doi
}

// Year returns a canonical key for a numeric year cell.
// "2020", "2020.0" and " 2020 " all yield "2020". Empty or unparseable
// input returns ok=false.
func Year(raw string) (key string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
