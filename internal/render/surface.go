package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Format describes whether a surface carries an alpha channel.
type Format int

const (
	// FormatOpaque surfaces always hold fully opaque pixels.
	FormatOpaque Format = iota
	// FormatAlpha surfaces may hold translucent and transparent pixels.
	FormatAlpha
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatOpaque:
		return "opaque"
	case FormatAlpha:
		return "alpha"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Transparent is the fully transparent clear color.
var Transparent = color.RGBA{}

// Surface is a fixed-size pixel grid with a clear color.
type Surface struct {
	img        *image.RGBA
	format     Format
	background color.RGBA
}

// NewSurface allocates a width x height surface. Opaque surfaces start
// black, alpha surfaces start transparent.
func NewSurface(width, height int, format Format) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	s := &Surface{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		format: format,
	}
	if format == FormatOpaque {
		s.background = color.RGBA{A: 255}
	}
	s.Clear()
	return s, nil
}

// Image returns the backing image. Callers must hold the owning buffer's lock.
func (s *Surface) Image() *image.RGBA { return s.img }

// Format returns the surface pixel format.
func (s *Surface) Format() Format { return s.format }

// Bounds returns the surface rectangle, always anchored at the origin.
func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// InBounds reports whether (x, y) addresses a pixel of the surface.
func (s *Surface) InBounds(x, y int) bool {
	return image.Pt(x, y).In(s.img.Rect)
}

// Background returns the clear color.
func (s *Surface) Background() color.RGBA { return s.background }

// SetBackground sets the color used by Clear.
func (s *Surface) SetBackground(c color.Color) {
	s.background = s.normalize(c)
}

// Clear fills the whole surface with its clear color.
func (s *Surface) Clear() {
	s.Fill(s.background)
}

// Fill replaces every pixel with c.
func (s *Surface) Fill(c color.Color) {
	draw.Draw(s.img, s.img.Rect, image.NewUniform(s.normalize(c)), image.Point{}, draw.Src)
}

// SetPixel replaces the pixel at (x, y) with c. It reports false and leaves
// the surface untouched when the coordinates are out of range.
func (s *Surface) SetPixel(x, y int, c color.Color) bool {
	if !s.InBounds(x, y) {
		return false
	}
	s.img.SetRGBA(x, y, s.normalize(c))
	return true
}

// At returns the pixel at (x, y), or transparent when out of range.
func (s *Surface) At(x, y int) color.RGBA {
	if !s.InBounds(x, y) {
		return Transparent
	}
	return s.img.RGBAAt(x, y)
}

// DrawTo composites the surface onto dst at the origin using op.
func (s *Surface) DrawTo(dst draw.Image, op draw.Op) {
	draw.Draw(dst, s.img.Rect, s.img, image.Point{}, op)
}

// normalize converts c to premultiplied RGBA, flattening it onto black for
// opaque surfaces.
func (s *Surface) normalize(c color.Color) color.RGBA {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	if s.format == FormatOpaque {
		rgba.A = 255
	}
	return rgba
}
