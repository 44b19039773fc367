package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	// Register image decoders for common formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"math"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ErrDecodeImage is returned when an image asset cannot be read or decoded.
var ErrDecodeImage = errors.New("failed to decode image")

// Bitmap is a decoded image asset ready to be drawn.
type Bitmap struct {
	name string
	img  *image.RGBA
}

// NewBitmap wraps an already decoded image.
func NewBitmap(name string, img image.Image) *Bitmap {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}
	return &Bitmap{name: name, img: rgba}
}

// LoadBitmap decodes a PNG, JPEG or GIF file.
func LoadBitmap(path string) (*Bitmap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeImage, path, err)
	}
	defer file.Close()

	return DecodeBitmap(path, file)
}

// LoadBitmapFS decodes an image from fsys, typically an embedded asset tree.
func LoadBitmapFS(fsys fs.FS, name string) (*Bitmap, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeImage, name, err)
	}
	defer file.Close()

	return DecodeBitmap(name, file)
}

// DecodeBitmap decodes an image from r.
func DecodeBitmap(name string, r io.Reader) (*Bitmap, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeImage, name, err)
	}
	return NewBitmap(name, img), nil
}

// Name returns the path or name the bitmap was loaded from.
func (b *Bitmap) Name() string { return b.name }

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.img.Rect.Dx() }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.img.Rect.Dy() }

// Image returns the decoded pixels.
func (b *Bitmap) Image() *image.RGBA { return b.img }

// DrawBitmap draws b centered at (x, y).
func (p *Painter) DrawBitmap(x, y int, b *Bitmap) bool {
	dp := image.Pt(x-b.Width()/2, y-b.Height()/2)
	r := b.img.Rect.Add(dp)
	if !r.Overlaps(p.surface.Bounds()) {
		return false
	}
	xdraw.Copy(p.surface.Image(), dp, b.img, b.img.Rect, xdraw.Over, nil)
	return true
}

// DrawTransformedBitmap draws b centered at (x, y), scaled by scale and
// rotated by angle radians around (x, y).
func (p *Painter) DrawTransformedBitmap(x, y int, angle, scale float64, b *Bitmap) bool {
	return p.transform(b, centeredAffine(float64(x), float64(y), angle, scale, scale, b))
}

// DrawMirroredBitmap draws b horizontally flipped, centered at (x, y) and
// rotated by angle radians around (x, y).
func (p *Painter) DrawMirroredBitmap(x, y int, angle float64, b *Bitmap) bool {
	return p.transform(b, centeredAffine(float64(x), float64(y), angle, -1, 1, b))
}

func (p *Painter) transform(b *Bitmap, m f64.Aff3) bool {
	if !transformedBounds(m, b.img.Rect).Overlaps(p.surface.Bounds()) {
		return false
	}
	var interp xdraw.Interpolator = xdraw.NearestNeighbor
	if p.highQuality {
		interp = xdraw.BiLinear
	}
	interp.Transform(p.surface.Image(), m, b.img, b.img.Rect, xdraw.Over, nil)
	return true
}

// centeredAffine maps bitmap pixels so that the bitmap center lands on
// (px, py) after scaling by (sx, sy) and rotating by angle. The half sizes
// use integer division to keep odd-sized bitmaps on the pixel grid.
func centeredAffine(px, py, angle, sx, sy float64, b *Bitmap) f64.Aff3 {
	hw, hh := float64(b.Width()/2), float64(b.Height()/2)
	sin, cos := math.Sincos(angle)
	return f64.Aff3{
		cos * sx, -sin * sy, px - cos*sx*hw + sin*sy*hh,
		sin * sx, cos * sy, py - sin*sx*hw - cos*sy*hh,
	}
}

func transformedBounds(m f64.Aff3, r image.Rectangle) image.Rectangle {
	corners := [4][2]float64{
		{float64(r.Min.X), float64(r.Min.Y)},
		{float64(r.Max.X), float64(r.Min.Y)},
		{float64(r.Min.X), float64(r.Max.Y)},
		{float64(r.Max.X), float64(r.Max.Y)},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x := m[0]*c[0] + m[1]*c[1] + m[2]
		y := m[3]*c[0] + m[4]*c[1] + m[5]
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// BitmapCache caches decoded bitmaps by path.
type BitmapCache struct {
	cache map[string]*Bitmap
	mu    sync.RWMutex
}

// NewBitmapCache creates an empty cache.
func NewBitmapCache() *BitmapCache {
	return &BitmapCache{cache: make(map[string]*Bitmap)}
}

// Load returns the cached bitmap for path, decoding it on first use.
// Decode failures are not cached.
func (c *BitmapCache) Load(path string) (*Bitmap, error) {
	c.mu.RLock()
	if b, ok := c.cache[path]; ok {
		c.mu.RUnlock()
		return b, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.cache[path]; ok {
		return b, nil
	}
	b, err := LoadBitmap(path)
	if err != nil {
		return nil, err
	}
	c.cache[path] = b
	return b, nil
}

// Len returns the number of cached bitmaps.
func (c *BitmapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear drops every cached bitmap.
func (c *BitmapCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*Bitmap)
}
