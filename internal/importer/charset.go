package importer

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fallbackCharset decodes input whose detected charset has no decoder.
const fallbackCharset = "windows-1252"

// DecodeText converts raw file bytes to UTF-8.
// Valid UTF-8 passes through with any BOM removed; anything else is run
// through charset detection and decoded. The detected charset name is
// returned for logging ("utf-8" when no conversion happened).
func DecodeText(data []byte) ([]byte, string, error) {
	if utf8.Valid(data) {
		return bytes.TrimPrefix(data, utf8BOM), "utf-8", nil
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return nil, "", fmt.Errorf("detecting charset: %w", err)
	}

	charset := result.Charset
	enc, err := htmlindex.Get(charset)
	if err != nil {
		// Unknown to the WHATWG index, e.g. IBM code pages
		charset = fallbackCharset
		enc, _ = htmlindex.Get(charset)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", charset, err)
	}
	return bytes.TrimPrefix(decoded, utf8BOM), charset, nil
}
