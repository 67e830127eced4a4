package prefs

import (
	"math"
	"strconv"
	"strings"

	"github.com/csheth/latexr/internal/options"
)

// ScaleKey is the preference holding the image scale.
const ScaleKey = "imgScale"

// LoadScale returns the persisted scale, or options.DefaultScale when the
// value is absent, unreadable, not a number or not positive.
func LoadScale(s *Store) float64 {
	raw, ok, err := s.Get(ScaleKey)
	if err != nil || !ok {
		return options.DefaultScale
	}
	return ParseScale(raw)
}

// ParseScale decodes a stored scale with the same fallbacks as LoadScale.
func ParseScale(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return options.DefaultScale
	}
	return options.ClampScale(value)
}

// SaveScale persists scale.
func SaveScale(s *Store, scale float64) error {
	return s.Set(ScaleKey, strconv.FormatFloat(scale, 'g', -1, 64))
}
