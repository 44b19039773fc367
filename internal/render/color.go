package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// NamedColors is the classic AWT palette, plus "transparent". Lookups via
// ParseColor are case-insensitive and ignore underscores, so "DARK_GRAY",
// "darkGray" and "dark_gray" are the same color.
var NamedColors = map[string]color.RGBA{
	"black":       {R: 0, G: 0, B: 0, A: 255},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"red":         {R: 255, G: 0, B: 0, A: 255},
	"green":       {R: 0, G: 255, B: 0, A: 255},
	"blue":        {R: 0, G: 0, B: 255, A: 255},
	"yellow":      {R: 255, G: 255, B: 0, A: 255},
	"cyan":        {R: 0, G: 255, B: 255, A: 255},
	"magenta":     {R: 255, G: 0, B: 255, A: 255},
	"orange":      {R: 255, G: 200, B: 0, A: 255},
	"pink":        {R: 255, G: 175, B: 175, A: 255},
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"grey":        {R: 128, G: 128, B: 128, A: 255},
	"lightgray":   {R: 192, G: 192, B: 192, A: 255},
	"lightgrey":   {R: 192, G: 192, B: 192, A: 255},
	"darkgray":    {R: 64, G: 64, B: 64, A: 255},
	"darkgrey":    {R: 64, G: 64, B: 64, A: 255},
	"transparent": {},
}

// ParseColor parses a color name from NamedColors, a hex triplet with or
// without '#' ("#RGB", "#RGBA", "#RRGGBB", "#RRGGBBAA"), or an
// "r,g,b" / "r,g,b,a" list of decimal components.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}

	key := strings.ToLower(strings.ReplaceAll(s, "_", ""))
	if c, ok := NamedColors[key]; ok {
		return c, nil
	}

	if strings.Contains(s, ",") {
		return parseComponents(s)
	}
	if hex := strings.TrimPrefix(s, "#"); isHex(hex) {
		return parseHex(hex)
	}
	return color.RGBA{}, fmt.Errorf("unrecognized color %q", s)
}

// MustParseColor is ParseColor for known-good literals. It panics on error.
func MustParseColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func isHex(s string) bool {
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}

func parseHex(s string) (color.RGBA, error) {
	if len(s) == 3 || len(s) == 4 {
		var b strings.Builder
		for _, r := range s {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		s = b.String()
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseComponents(s string) (color.RGBA, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("color %q needs 3 or 4 components, got %d", s, len(parts))
	}
	vals := [4]uint8{3: 255}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color component %q: %w", p, err)
		}
		vals[i] = uint8(v)
	}
	return color.RGBA{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}, nil
}

// ToHex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func ToHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.RGBA, alpha uint8) color.RGBA {
	c.A = alpha
	return c
}
