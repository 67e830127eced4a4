// Package filename derives download names from formula markup.
package filename

import (
	"regexp"
	"strings"

	"github.com/csheth/latexr/internal/options"
)

// MaxStemLength bounds the stem returned by Sanitize, in runes.
const MaxStemLength = 25

// FallbackStem is used by Build when the markup sanitizes to nothing.
const FallbackStem = "formula"

var (
	controlReplacer = strings.NewReplacer(`\`, " ", "{", " ", "}", " ")
	// ASCII whitespace including vertical tab, Unicode space separators and
	// the byte order mark.
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
)

// Sanitize turns raw markup into a filename stem: markup control characters
// become spaces, whitespace runs collapse, the result is cut to MaxStemLength
// runes and trimmed.
func Sanitize(markup string) string {
	name := controlReplacer.Replace(markup)
	name = whitespaceRun.ReplaceAllString(name, " ")
	runes := []rune(name)
	if len(runes) > MaxStemLength {
		runes = runes[:MaxStemLength]
	}
	return strings.TrimSpace(string(runes))
}

// Extension returns the file extension for an image type (its MIME subtype).
func Extension(t options.ImageType) string {
	return t.Subtype()
}

// Build returns the download filename for markup exported as t.
func Build(markup string, t options.ImageType) string {
	stem := Sanitize(markup)
	if stem == "" {
		stem = FallbackStem
	}
	return stem + "." + Extension(t)
}
