// Package options holds the render options a session edits: markup, math
// mode, scale, background, image type and quality.
package options

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ImageType is the MIME type of an exported image.
type ImageType string

const (
	TypePNG  ImageType = "image/png"
	TypeJPEG ImageType = "image/jpeg"
	TypeWEBP ImageType = "image/webp"
)

// Types lists the supported image types in the order the format selector cycles.
var Types = []ImageType{TypePNG, TypeJPEG, TypeWEBP}

// Subtype returns the part after "image/".
func (t ImageType) Subtype() string {
	if idx := strings.IndexByte(string(t), '/'); idx >= 0 {
		return string(t)[idx+1:]
	}
	return string(t)
}

// Label is the upper-case name shown in the format selector.
func (t ImageType) Label() string {
	return strings.ToUpper(t.Subtype())
}

// Lossy reports whether quality applies when encoding t.
func (t ImageType) Lossy() bool {
	return t == TypeJPEG || t == TypeWEBP
}

// Valid reports whether t is one of Types.
func (t ImageType) Valid() bool {
	for _, candidate := range Types {
		if candidate == t {
			return true
		}
	}
	return false
}

// Next returns the type following t in Types, wrapping around.
func (t ImageType) Next() ImageType {
	for i, candidate := range Types {
		if candidate == t {
			return Types[(i+1)%len(Types)]
		}
	}
	return TypePNG
}

// ParseImageType accepts "png", "PNG" or "image/png" style names.
func ParseImageType(value string) (ImageType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if !strings.HasPrefix(value, "image/") {
		value = "image/" + value
	}
	if value == "image/jpg" {
		value = string(TypeJPEG)
	}
	t := ImageType(value)
	if !t.Valid() {
		return "", fmt.Errorf("unsupported image type %q", value)
	}
	return t, nil
}

const (
	DefaultScale      = 3.0
	DefaultBackground = "#ffffff00"
	DefaultQuality    = 92
	DefaultType       = TypePNG

	// ScaleStep is the factor between the displayed scale field and Scale.
	ScaleStep = 5
	// MinScaleInput and MaxScaleInput bound the displayed scale field.
	MinScaleInput = 1
	MaxScaleInput = 200

	MinQuality = 0
	MaxQuality = 100

	// MaxBackgroundLength covers "#rrggbbaa", counted in runes.
	MaxBackgroundLength = 9
)

// MinScale and MaxScale are the bounds of Scale itself.
const (
	MinScale = float64(MinScaleInput) / ScaleStep
	MaxScale = float64(MaxScaleInput) / ScaleStep
)

// Options is the render state edited by the user.
type Options struct {
	Text       string
	MathMode   bool
	Scale      float64
	Background string
	Type       ImageType
	Quality    int
}

// Default returns the options a fresh session starts with.
func Default() Options {
	return Options{
		MathMode:   true,
		Scale:      DefaultScale,
		Background: DefaultBackground,
		Type:       DefaultType,
		Quality:    DefaultQuality,
	}
}

// TextEmpty reports whether the markup is blank.
func (o Options) TextEmpty() bool {
	return strings.TrimSpace(o.Text) == ""
}

// CanExport reports whether download and preview are available.
func (o Options) CanExport() bool {
	return !o.TextEmpty()
}

// CanCopy reports whether copying the image to the clipboard is available.
// Only PNG is reliably clipboard-writable.
func (o Options) CanCopy() bool {
	return o.CanExport() && o.Type == TypePNG
}

// ScaleInput returns the displayed value of the scale field.
func (o Options) ScaleInput() int {
	return int(o.Scale*ScaleStep + 0.5)
}

// SetScaleInput applies a value typed into the scale field. The leading
// integer is clamped into [MinScaleInput, MaxScaleInput]; input without one
// leaves Scale unchanged. It reports whether Scale was assigned.
func (o *Options) SetScaleInput(raw string) bool {
	value, ok := ParseLeadingInt(raw)
	if !ok {
		return false
	}
	o.Scale = float64(clampInt(value, MinScaleInput, MaxScaleInput)) / ScaleStep
	return true
}

// SetQualityInput applies a value typed into the quality field, clamped to
// [MinQuality, MaxQuality]. Input without a leading integer is ignored.
func (o *Options) SetQualityInput(raw string) bool {
	value, ok := ParseLeadingInt(raw)
	if !ok {
		return false
	}
	o.Quality = clampInt(value, MinQuality, MaxQuality)
	return true
}

// SetBackground stores a background value, forcing a leading '#' and at most
// MaxBackgroundLength characters.
func (o *Options) SetBackground(raw string) {
	o.Background = NormalizeBackground(raw)
}

// NormalizeBackground mirrors what the background field accepts: the first
// character is always '#', the remainder is kept as typed and the whole value
// is cut to MaxBackgroundLength runes.
func NormalizeBackground(raw string) string {
	rest := raw
	if rest == "" {
		rest = "#"
	}
	_, size := utf8.DecodeRuneInString(rest)
	value := "#" + rest[size:]
	if runes := []rune(value); len(runes) > MaxBackgroundLength {
		value = string(runes[:MaxBackgroundLength])
	}
	return value
}

// ResetScale restores the default scale.
func (o *Options) ResetScale() {
	o.Scale = DefaultScale
}

// ResetQuality restores the default quality.
func (o *Options) ResetQuality() {
	o.Quality = DefaultQuality
}

// ClampScale bounds an arbitrary scale value into [MinScale, MaxScale].
func ClampScale(scale float64) float64 {
	if scale < MinScale {
		return MinScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}

// ParseLeadingInt reads an optionally signed decimal integer at the start of
// raw, after leading whitespace, ignoring whatever follows it.
func ParseLeadingInt(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	value, err := strconv.Atoi(s[:end])
	if err != nil {
		// Only overflow gets here; saturate like a huge typed number would clamp.
		if s[0] == '-' {
			return math.MinInt32, true
		}
		return math.MaxInt32, true
	}
	return value, true
}

func clampInt(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
