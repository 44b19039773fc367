package render

import (
	"image/color"
	"testing"
)

func TestParseColorNamed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected color.RGBA
	}{
		{"red", "red", color.RGBA{R: 255, A: 255}},
		{"RED uppercase", "RED", color.RGBA{R: 255, A: 255}},
		{"green is full green", "green", color.RGBA{G: 255, A: 255}},
		{"orange", "orange", color.RGBA{R: 255, G: 200, A: 255}},
		{"pink", "pink", color.RGBA{R: 255, G: 175, B: 175, A: 255}},
		{"dark gray constant style", "DARK_GRAY", color.RGBA{R: 64, G: 64, B: 64, A: 255}},
		{"light gray camel case", "lightGray", color.RGBA{R: 192, G: 192, B: 192, A: 255}},
		{"transparent", "transparent", color.RGBA{}},
		{"with spaces", "  blue  ", color.RGBA{B: 255, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if err != nil {
				t.Fatalf("ParseColor(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseColorHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected color.RGBA
	}{
		{"#RRGGBB", "#FF0000", color.RGBA{R: 255, A: 255}},
		{"lowercase", "#1a2b3c", color.RGBA{R: 26, G: 43, B: 60, A: 255}},
		{"without #", "00FF00", color.RGBA{G: 255, A: 255}},
		{"#RGB", "#F0A", color.RGBA{R: 255, B: 170, A: 255}},
		{"#RGBA", "#F008", color.RGBA{R: 255, A: 136}},
		{"#RRGGBBAA", "#0000FF80", color.RGBA{B: 255, A: 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if err != nil {
				t.Fatalf("ParseColor(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseColorComponents(t *testing.T) {
	tests := []struct {
		input    string
		expected color.RGBA
	}{
		{"255,0,0", color.RGBA{R: 255, A: 255}},
		{" 10, 20 , 30 ", color.RGBA{R: 10, G: 20, B: 30, A: 255}},
		{"1,2,3,4", color.RGBA{R: 1, G: 2, B: 3, A: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if err != nil {
				t.Fatalf("ParseColor(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseColorErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"notacolor",
		"#GG0000",
		"#12345",
		"256,0,0",
		"1,2",
		"1,2,3,4,5",
		"a,b,c",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseColor(input); err == nil {
				t.Errorf("ParseColor(%q) expected error", input)
			}
		})
	}
}

func TestMustParseColor(t *testing.T) {
	if got := MustParseColor("white"); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("MustParseColor(white) = %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustParseColor should panic on invalid input")
		}
	}()
	MustParseColor("invalid")
}

func TestToHex(t *testing.T) {
	tests := []struct {
		input    color.RGBA
		expected string
	}{
		{color.RGBA{R: 255, A: 255}, "#FF0000"},
		{color.RGBA{R: 26, G: 43, B: 60, A: 255}, "#1A2B3C"},
		{color.RGBA{B: 255, A: 128}, "#0000FF80"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := ToHex(tt.input); got != tt.expected {
				t.Errorf("ToHex(%v) = %q, want %q", tt.input, got, tt.expected)
			}
			back, err := ParseColor(tt.expected)
			if err != nil || back != tt.input {
				t.Errorf("ParseColor(ToHex(%v)) = %v, %v", tt.input, back, err)
			}
		})
	}
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(color.RGBA{R: 1, G: 2, B: 3, A: 255}, 7)
	if c != (color.RGBA{R: 1, G: 2, B: 3, A: 7}) {
		t.Errorf("WithAlpha = %v", c)
	}
}

func TestNamedColorsOpaque(t *testing.T) {
	for name, c := range NamedColors {
		if name == "transparent" {
			continue
		}
		if c.A != 255 {
			t.Errorf("NamedColors[%q] alpha = %d, want 255", name, c.A)
		}
	}
}
