package render

import (
	"image"
	"image/color"
	"testing"
)

func newTestPainter(t *testing.T, w, h int, format Format) *Painter {
	t.Helper()
	s, err := NewSurface(w, h, format)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	if format == FormatOpaque {
		s.SetBackground(color.White)
		s.Clear()
	}
	return NewPainter(s, nil, true)
}

// countNot returns how many pixels of s differ from c.
func countNot(s *Surface, c color.RGBA) int {
	n := 0
	b := s.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if s.At(x, y) != c {
				n++
			}
		}
	}
	return n
}

func TestDrawStringMarksPixels(t *testing.T) {
	p := newTestPainter(t, 100, 40, FormatOpaque)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	visible, err := p.DrawString(5, 25, "Hello")
	if err != nil {
		t.Fatalf("DrawString() error = %v", err)
	}
	if !visible {
		t.Error("DrawString() should report visible text")
	}
	if countNot(p.Surface(), white) == 0 {
		t.Error("DrawString() left the surface untouched")
	}
}

func TestDrawStringOutside(t *testing.T) {
	p := newTestPainter(t, 50, 50, FormatAlpha)

	visible, err := p.DrawString(500, 500, "far away")
	if err != nil {
		t.Fatalf("DrawString() error = %v", err)
	}
	if visible {
		t.Error("DrawString() outside the surface should report invisible")
	}
	if countNot(p.Surface(), Transparent) != 0 {
		t.Error("DrawString() outside the surface changed pixels")
	}
}

func TestDrawStringEmpty(t *testing.T) {
	p := newTestPainter(t, 50, 50, FormatAlpha)
	if _, err := p.DrawString(10, 10, ""); err != nil {
		t.Fatalf("DrawString(\"\") error = %v", err)
	}
	if countNot(p.Surface(), Transparent) != 0 {
		t.Error("empty string changed pixels")
	}
}

func TestDrawStringStyledKeepsState(t *testing.T) {
	p := newTestPainter(t, 100, 40, FormatAlpha)
	p.SetColor(color.RGBA{B: 255, A: 255})
	before := p.Font()

	style := TextStyle{Family: FamilyMonospaced, Style: FontStyleBold, Size: 20}
	if _, err := p.DrawStringStyled(2, 30, "x", color.RGBA{R: 255, A: 255}, style); err != nil {
		t.Fatalf("DrawStringStyled() error = %v", err)
	}
	if p.Color() != (color.RGBA{B: 255, A: 255}) {
		t.Error("DrawStringStyled() changed the painter color")
	}
	if p.Font() != before {
		t.Error("DrawStringStyled() changed the painter font")
	}
}

func TestDrawFancyStringHasShadow(t *testing.T) {
	p := newTestPainter(t, 120, 60, FormatAlpha)
	red := color.RGBA{R: 255, A: 255}

	if _, err := p.DrawFancyString(5, 40, "Hi", red, 30); err != nil {
		t.Fatalf("DrawFancyString() error = %v", err)
	}

	var sawRed, sawGray bool
	b := p.Surface().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch p.Surface().At(x, y) {
			case red:
				sawRed = true
			case fancyShadowColor:
				sawGray = true
			}
		}
	}
	if !sawRed {
		t.Error("fancy string has no pixel in the text color")
	}
	if !sawGray {
		t.Error("fancy string has no shadow pixel")
	}
}

func TestSetFontDefaults(t *testing.T) {
	p := newTestPainter(t, 10, 10, FormatAlpha)
	p.SetFont(TextStyle{Style: FontStyleItalic})

	got := p.Font()
	if got.Family != FamilySansSerif || got.Size != DefaultFontSize || got.Style != FontStyleItalic {
		t.Errorf("SetFont() stored %+v", got)
	}
}

func TestMeasureString(t *testing.T) {
	p := newTestPainter(t, 10, 10, FormatAlpha)

	small, h1, err := p.MeasureString("Hello", TextStyle{Family: FamilySansSerif, Size: 12})
	if err != nil {
		t.Fatalf("MeasureString() error = %v", err)
	}
	large, h2, _ := p.MeasureString("Hello", TextStyle{Family: FamilySansSerif, Size: 24})
	if small <= 0 || h1 <= 0 {
		t.Fatalf("MeasureString() = %d x %d, want positive", small, h1)
	}
	if large <= small || h2 <= h1 {
		t.Errorf("larger size should measure larger: %dx%d vs %dx%d", large, h2, small, h1)
	}
}

func TestDrawTextReportsVisibility(t *testing.T) {
	face, err := NewFontManager().Face(FamilySansSerif, FontStyleRegular, 12, true)
	if err != nil {
		t.Fatal(err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, 40, 20))
	if !DrawText(dst, face, 0, 15, "ok", color.Black) {
		t.Error("DrawText() inside should be visible")
	}
	if DrawText(dst, face, -200, 15, "ok", color.Black) {
		t.Error("DrawText() left of the image should be invisible")
	}
}
