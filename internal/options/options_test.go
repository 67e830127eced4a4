package options

import (
	"testing"
	"unicode/utf8"
)

func TestDefault(t *testing.T) {
	o := Default()
	if !o.MathMode || o.Scale != DefaultScale || o.Background != "#ffffff00" || o.Type != TypePNG || o.Quality != 92 {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	if o.ScaleInput() != 15 {
		t.Fatalf("ScaleInput() = %d, want 15", o.ScaleInput())
	}
}

func TestSetScaleInputClamps(t *testing.T) {
	cases := []struct {
		input string
		want  float64
		ok    bool
	}{
		{input: "0", want: MinScale, ok: true},
		{input: "99999", want: MaxScale, ok: true},
		{input: "-7", want: MinScale, ok: true},
		{input: "25", want: 5, ok: true},
		{input: "10px", want: 2, ok: true},
		{input: "  40", want: 8, ok: true},
		{input: "99999999999999999999", want: MaxScale, ok: true},
		{input: "abc", want: DefaultScale, ok: false},
		{input: "", want: DefaultScale, ok: false},
	}
	for _, tc := range cases {
		o := Default()
		ok := o.SetScaleInput(tc.input)
		if ok != tc.ok || o.Scale != tc.want {
			t.Fatalf("SetScaleInput(%q) = (%v, scale %v), want (%v, %v)", tc.input, ok, o.Scale, tc.ok, tc.want)
		}
	}
	if MinScale != 0.2 || MaxScale != 40 {
		t.Fatalf("scale bounds = [%v, %v]", MinScale, MaxScale)
	}
}

func TestSetQualityInputClamps(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{input: "-5", want: 0},
		{input: "150", want: 100},
		{input: "75", want: 75},
		{input: "x", want: DefaultQuality},
	}
	for _, tc := range cases {
		o := Default()
		o.SetQualityInput(tc.input)
		if o.Quality != tc.want {
			t.Fatalf("SetQualityInput(%q) quality = %d, want %d", tc.input, o.Quality, tc.want)
		}
	}
}

func TestNormalizeBackground(t *testing.T) {
	cases := map[string]string{
		"":             "#",
		"#fff":         "#fff",
		"ffffff":       "#fffff",
		"#ffffff00":    "#ffffff00",
		"#ffffff00aa":  "#ffffff00",
		"#":            "#",
		"é12345":       "#12345",
		"#123456789ab": "#12345678",
		"#1234567é9":   "#1234567é",
		"#ééééééééé":   "#éééééééé",
	}
	for input, want := range cases {
		got := NormalizeBackground(input)
		if got != want {
			t.Fatalf("NormalizeBackground(%q) = %q, want %q", input, got, want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("NormalizeBackground(%q) produced invalid UTF-8 %q", input, got)
		}
	}
}

func TestAvailability(t *testing.T) {
	o := Default()
	if o.CanExport() || o.CanCopy() {
		t.Fatal("empty text should disable export and copy")
	}
	o.Text = "   "
	if o.CanExport() {
		t.Fatal("whitespace-only text should disable export")
	}
	o.Text = `\frac{1}{2}`
	if !o.CanExport() || !o.CanCopy() {
		t.Fatal("png with text should allow export and copy")
	}
	for _, typ := range []ImageType{TypeJPEG, TypeWEBP} {
		o.Type = typ
		if o.CanCopy() {
			t.Fatalf("copy should be disabled for %s", typ)
		}
		if !o.CanExport() {
			t.Fatalf("export should stay enabled for %s", typ)
		}
	}
}

func TestImageTypes(t *testing.T) {
	if TypePNG.Next() != TypeJPEG || TypeJPEG.Next() != TypeWEBP || TypeWEBP.Next() != TypePNG {
		t.Fatal("Next does not cycle through Types")
	}
	if TypeJPEG.Subtype() != "jpeg" || TypeWEBP.Label() != "WEBP" {
		t.Fatal("unexpected subtype/label")
	}
	if TypePNG.Lossy() || !TypeJPEG.Lossy() {
		t.Fatal("unexpected lossy classification")
	}
	for input, want := range map[string]ImageType{"png": TypePNG, "JPG": TypeJPEG, "image/webp": TypeWEBP} {
		got, err := ParseImageType(input)
		if err != nil || got != want {
			t.Fatalf("ParseImageType(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseImageType("gif"); err == nil {
		t.Fatal("gif should be rejected")
	}
}
