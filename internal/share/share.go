// Package share encodes formulas into links and back.
package share

import (
	"fmt"
	"net/url"
	"strings"
)

// Param is the query parameter carrying the formula.
const Param = "f"

// DefaultBaseURL is where shared links point unless configured otherwise.
const DefaultBaseURL = "https://latexr.web.app/"

// BuildURL returns base with the formula text as the f query parameter.
// Any text is accepted verbatim.
func BuildURL(base, text string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	query := url.Values{Param: []string{text}}.Encode()
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + query
}

// Decode extracts the formula from a raw query string (with or without the
// leading '?'). The second result is false when the parameter is absent or
// the query cannot be parsed.
func Decode(rawQuery string) (string, bool) {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return "", false
	}
	if !values.Has(Param) {
		return "", false
	}
	return values.Get(Param), true
}

// DecodeURL extracts the formula from a full share link.
func DecodeURL(link string) (string, bool, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", false, fmt.Errorf("share: parse link: %w", err)
	}
	text, ok := Decode(u.RawQuery)
	return text, ok, nil
}
