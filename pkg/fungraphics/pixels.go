package fungraphics

import (
	"errors"
	"fmt"
	"image/color"
	"image/draw"
	"path/filepath"
)

// ErrPixelArraySize is returned when a pixel array does not match the
// frame size.
var ErrPixelArraySize = errors.New("pixel array size does not match the frame")

// Pixel arrays are indexed [x][y]: the outer slice has FrameWidth columns
// of FrameHeight pixels each.

// Gray returns the luminance of c as 0.3 R + 0.59 G + 0.11 B, truncated.
func Gray(c color.Color) int {
	r := color.RGBAModel.Convert(c).(color.RGBA)
	return int(0.3*float64(r.R) + 0.59*float64(r.G) + 0.11*float64(r.B))
}

// ToGray converts a color array to opaque gray colors.
func ToGray(px [][]color.RGBA) [][]color.RGBA {
	out := make([][]color.RGBA, len(px))
	for x, col := range px {
		out[x] = make([]color.RGBA, len(col))
		for y, c := range col {
			g := uint8(Gray(c))
			out[x][y] = color.RGBA{R: g, G: g, B: g, A: 255}
		}
	}
	return out
}

// ToGrayInt converts a color array to gray intensities in [0, 255].
func ToGrayInt(px [][]color.RGBA) [][]int {
	out := make([][]int, len(px))
	for x, col := range px {
		out[x] = make([]int, len(col))
		for y, c := range col {
			out[x][y] = Gray(c)
		}
	}
	return out
}

// NewImageGraphics opens a surface sized to the image at path and shows the
// image on its front layer. The title defaults to the file name.
func NewImageGraphics(path string, opts Options) (*FunGraphics, error) {
	b, err := LoadBitmap(path)
	if err != nil {
		return nil, err
	}
	opts.Width, opts.Height = b.Width(), b.Height()
	if opts.Title == "" || opts.Title == DefaultOptions().Title {
		opts.Title = filepath.Base(path)
	}

	fg, err := New(opts)
	if err != nil {
		return nil, err
	}
	fg.buf.Lock()
	front := fg.buf.Front().Image()
	draw.Draw(front, front.Rect, b.Image(), b.Image().Bounds().Min, draw.Src)
	fg.buf.Unlock()
	return fg, nil
}

// Pixels returns a copy of the active layer as an [x][y] color array.
func (fg *FunGraphics) Pixels() [][]color.RGBA {
	fg.buf.Lock()
	defer fg.buf.Unlock()

	s := fg.buf.Active()
	w, h := s.Width(), s.Height()
	out := make([][]color.RGBA, w)
	for x := range out {
		out[x] = make([]color.RGBA, h)
		for y := range out[x] {
			out[x][y] = s.At(x, y)
		}
	}
	return out
}

// PixelsGray returns the active layer as an [x][y] array of gray
// intensities.
func (fg *FunGraphics) PixelsGray() [][]int {
	return ToGrayInt(fg.Pixels())
}

// SetPixels replaces the active layer with px in one composition.
func (fg *FunGraphics) SetPixels(px [][]color.RGBA) error {
	if err := fg.checkArray(len(px), func(x int) int { return len(px[x]) }); err != nil {
		return err
	}
	fg.buf.Lock()
	defer fg.buf.Unlock()

	s := fg.buf.Active()
	for x, col := range px {
		for y, c := range col {
			s.SetPixel(x, y, c)
		}
	}
	fg.metrics.IncrementDrawCalls()
	return nil
}

// SetPixelsGray replaces the active layer with opaque gray pixels.
// Intensities are clamped to [0, 255].
func (fg *FunGraphics) SetPixelsGray(px [][]int) error {
	if err := fg.checkArray(len(px), func(x int) int { return len(px[x]) }); err != nil {
		return err
	}
	fg.buf.Lock()
	defer fg.buf.Unlock()

	s := fg.buf.Active()
	for x, col := range px {
		for y, v := range col {
			s.SetPixel(x, y, grayColor(v))
		}
	}
	fg.metrics.IncrementDrawCalls()
	return nil
}

// GetPixelGray returns the gray intensity at (x, y), or 0 outside the frame.
func (fg *FunGraphics) GetPixelGray(x, y int) int {
	fg.buf.Lock()
	defer fg.buf.Unlock()
	s := fg.buf.Active()
	if !s.InBounds(x, y) {
		return 0
	}
	return Gray(s.At(x, y))
}

// SetPixelGray sets an opaque gray pixel. Points outside the frame are
// ignored.
func (fg *FunGraphics) SetPixelGray(x, y, intensity int) {
	fg.SetPixelColor(x, y, grayColor(intensity))
}

func (fg *FunGraphics) checkArray(w int, height func(x int) int) error {
	fw, fh := fg.buf.Width(), fg.buf.Height()
	if w != fw {
		return fmt.Errorf("%w: %d columns, want %d", ErrPixelArraySize, w, fw)
	}
	for x := 0; x < w; x++ {
		if h := height(x); h != fh {
			return fmt.Errorf("%w: column %d has %d pixels, want %d", ErrPixelArraySize, x, h, fh)
		}
	}
	return nil
}

func grayColor(v int) color.RGBA {
	g := uint8(max(0, min(255, v)))
	return color.RGBA{R: g, G: g, B: g, A: 255}
}
