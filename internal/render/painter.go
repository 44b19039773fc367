package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa is the cubic Bézier control distance for a quarter ellipse.
const kappa = 0.5522847498

// coverageThreshold is the mask value above which a pixel is set when
// anti-aliasing is off.
const coverageThreshold = 128

// Painter draws shapes into one surface. It carries the per-layer drawing
// state: current color, pen width and quality. A Painter is not safe for
// concurrent use; callers serialize through the owning DoubleBuffer lock.
type Painter struct {
	surface     *Surface
	color       color.RGBA
	penWidth    float32
	highQuality bool
	fonts       *FontManager
	font        TextStyle

	rast *vector.Rasterizer
	mask *image.Alpha
}

// NewPainter creates a Painter drawing into s with a black 1px pen.
func NewPainter(s *Surface, fonts *FontManager, highQuality bool) *Painter {
	if fonts == nil {
		fonts = NewFontManager()
	}
	return &Painter{
		surface:     s,
		color:       color.RGBA{A: 255},
		penWidth:    1,
		highQuality: highQuality,
		fonts:       fonts,
		font:        DefaultTextStyle,
		rast:        vector.NewRasterizer(0, 0),
	}
}

// Surface returns the target surface.
func (p *Painter) Surface() *Surface { return p.surface }

// SetColor sets the color used by subsequent operations.
func (p *Painter) SetColor(c color.Color) {
	p.color = color.RGBAModel.Convert(c).(color.RGBA)
}

// Color returns the current color.
func (p *Painter) Color() color.RGBA { return p.color }

// SetPenWidth sets the stroke width for outlines and lines. Widths below
// one pixel are drawn as one pixel.
func (p *Painter) SetPenWidth(w float64) {
	if w < 1 || math.IsNaN(w) {
		w = 1
	}
	p.penWidth = float32(w)
}

// PenWidth returns the stroke width.
func (p *Painter) PenWidth() float64 { return float64(p.penWidth) }

// SetHighQuality toggles anti-aliasing.
func (p *Painter) SetHighQuality(on bool) { p.highQuality = on }

// HighQuality reports whether anti-aliasing is on.
func (p *Painter) HighQuality() bool { return p.highQuality }

// Clear fills the surface with its clear color.
func (p *Painter) Clear() { p.surface.Clear() }

// ClearColor fills the surface with c without changing its clear color.
func (p *Painter) ClearColor(c color.Color) { p.surface.Fill(c) }

// SetPixel sets one pixel to the current color.
func (p *Painter) SetPixel(x, y int) bool {
	return p.surface.SetPixel(x, y, p.color)
}

// DrawLine strokes the segment between two pixel centers, end pixels included.
func (p *Painter) DrawLine(x1, y1, x2, y2 int) bool {
	var pa path
	pa.segment(float32(x1)+0.5, float32(y1)+0.5, float32(x2)+0.5, float32(y2)+0.5, p.penWidth/2)
	return p.fill(&pa)
}

// DrawRect strokes the outline of a rectangle spanning width+1 by height+1
// pixels, matching the usual integer-grid outline convention.
func (p *Painter) DrawRect(x, y, width, height int) bool {
	if width < 0 || height < 0 {
		return false
	}
	hw := p.penWidth / 2
	x0, y0 := float32(x)+0.5, float32(y)+0.5
	x1, y1 := x0+float32(width), y0+float32(height)

	var pa path
	pa.rect(x0-hw, y0-hw, x1+hw, y1+hw, false)
	if x1-x0 > 2*hw && y1-y0 > 2*hw {
		pa.rect(x0+hw, y0+hw, x1-hw, y1-hw, true)
	}
	return p.fill(&pa)
}

// FillRect fills the width by height rectangle whose top-left corner is (x, y).
func (p *Painter) FillRect(x, y, width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	r := image.Rect(x, y, saturatingAdd(x, width), saturatingAdd(y, height)).Intersect(p.surface.Bounds())
	if r.Empty() {
		return false
	}
	draw.Draw(p.surface.Image(), r, image.NewUniform(p.color), image.Point{}, draw.Over)
	return true
}

// saturatingAdd returns start+length, clamped to math.MaxInt. length must
// be positive.
func saturatingAdd(start, length int) int {
	if start > math.MaxInt-length {
		return math.MaxInt
	}
	return start + length
}

// DrawOval strokes the ellipse inscribed in the rectangle at (x, y) of the
// given size.
func (p *Painter) DrawOval(x, y, width, height int) bool {
	if width < 0 || height < 0 {
		return false
	}
	hw := p.penWidth / 2
	rx, ry := float32(width)/2, float32(height)/2
	cx, cy := float32(x)+0.5+rx, float32(y)+0.5+ry

	var pa path
	pa.ellipse(cx, cy, rx+hw, ry+hw, false)
	if rx > hw && ry > hw {
		pa.ellipse(cx, cy, rx-hw, ry-hw, true)
	}
	return p.fill(&pa)
}

// FillOval fills the ellipse inscribed in the rectangle at (x, y) of the
// given size.
func (p *Painter) FillOval(x, y, width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	rx, ry := float32(width)/2, float32(height)/2

	var pa path
	pa.ellipse(float32(x)+rx, float32(y)+ry, rx, ry, false)
	return p.fill(&pa)
}

// DrawPolygon strokes the closed outline through pts.
func (p *Painter) DrawPolygon(pts []image.Point) bool {
	if len(pts) == 0 {
		return false
	}
	hw := p.penWidth / 2
	var pa path
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		pa.segment(float32(a.X)+0.5, float32(a.Y)+0.5, float32(b.X)+0.5, float32(b.Y)+0.5, hw)
	}
	return p.fill(&pa)
}

// FillPolygon fills the interior of the closed polygon through pts and
// strokes its outline, so thin polygons still cover their edge pixels.
func (p *Painter) FillPolygon(pts []image.Point) bool {
	if len(pts) < 3 {
		return p.DrawPolygon(pts)
	}
	var pa path
	pa.moveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, pt := range pts[1:] {
		pa.lineTo(float32(pt.X), float32(pt.Y))
	}
	pa.close()
	filled := p.fill(&pa)
	outlined := p.DrawPolygon(pts)
	return filled || outlined
}

// fill rasterizes pa into a coverage mask clipped to the surface and
// composites the current color through it. It reports false when the path
// lies entirely outside the surface.
func (p *Painter) fill(pa *path) bool {
	if len(pa.ops) == 0 {
		return false
	}
	r := pa.bounds().Intersect(p.surface.Bounds())
	if r.Empty() {
		return false
	}

	w, h := r.Dx(), r.Dy()
	p.rast.Reset(w, h)
	pa.replay(p.rast, float32(r.Min.X), float32(r.Min.Y))

	mask := p.maskFor(w, h)
	p.rast.DrawOp = draw.Src
	p.rast.Draw(mask, mask.Rect, image.Opaque, image.Point{})
	if !p.highQuality {
		for i, a := range mask.Pix {
			if a >= coverageThreshold {
				mask.Pix[i] = 0xff
			} else {
				mask.Pix[i] = 0
			}
		}
	}

	draw.DrawMask(p.surface.Image(), r, image.NewUniform(p.color), image.Point{}, mask, image.Point{}, draw.Over)
	return true
}

func (p *Painter) maskFor(w, h int) *image.Alpha {
	if p.mask != nil && cap(p.mask.Pix) >= w*h {
		p.mask.Pix = p.mask.Pix[:w*h]
		p.mask.Stride = w
		p.mask.Rect = image.Rect(0, 0, w, h)
		return p.mask
	}
	p.mask = image.NewAlpha(image.Rect(0, 0, w, h))
	return p.mask
}

type opKind uint8

const (
	opMove opKind = iota
	opLine
	opCube
	opClose
)

type pathOp struct {
	kind opKind
	pts  [3][2]float32
}

// path records vector operations and their bounding box so the rasterizer
// can be sized to the visible part of a shape.
type path struct {
	ops                    []pathOp
	minX, minY, maxX, maxY float32
}

func (pa *path) grow(x, y float32) {
	if len(pa.ops) == 0 {
		pa.minX, pa.maxX, pa.minY, pa.maxY = x, x, y, y
		return
	}
	pa.minX = min(pa.minX, x)
	pa.maxX = max(pa.maxX, x)
	pa.minY = min(pa.minY, y)
	pa.maxY = max(pa.maxY, y)
}

func (pa *path) moveTo(x, y float32) {
	pa.grow(x, y)
	pa.ops = append(pa.ops, pathOp{kind: opMove, pts: [3][2]float32{{x, y}}})
}

func (pa *path) lineTo(x, y float32) {
	pa.grow(x, y)
	pa.ops = append(pa.ops, pathOp{kind: opLine, pts: [3][2]float32{{x, y}}})
}

func (pa *path) cubeTo(bx, by, cx, cy, dx, dy float32) {
	pa.grow(bx, by)
	pa.grow(cx, cy)
	pa.grow(dx, dy)
	pa.ops = append(pa.ops, pathOp{kind: opCube, pts: [3][2]float32{{bx, by}, {cx, cy}, {dx, dy}}})
}

func (pa *path) close() {
	pa.ops = append(pa.ops, pathOp{kind: opClose})
}

// rect adds an axis-aligned rectangle contour, clockwise unless reverse.
func (pa *path) rect(x0, y0, x1, y1 float32, reverse bool) {
	pa.moveTo(x0, y0)
	if reverse {
		pa.lineTo(x0, y1)
		pa.lineTo(x1, y1)
		pa.lineTo(x1, y0)
	} else {
		pa.lineTo(x1, y0)
		pa.lineTo(x1, y1)
		pa.lineTo(x0, y1)
	}
	pa.close()
}

// ellipse adds a four-arc ellipse contour, clockwise unless reverse.
func (pa *path) ellipse(cx, cy, rx, ry float32, reverse bool) {
	kx, ky := rx*kappa, ry*kappa
	if reverse {
		ky = -ky
		ry = -ry
	}
	pa.moveTo(cx+rx, cy)
	pa.cubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	pa.cubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	pa.cubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	pa.cubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	pa.close()
}

// segment adds a square-capped stroke of half width hw from (x1, y1) to
// (x2, y2). All segments share one orientation so overlapping joints add up
// instead of cancelling.
func (pa *path) segment(x1, y1, x2, y2, hw float32) {
	dx, dy := x2-x1, y2-y1
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		pa.rect(x1-hw, y1-hw, x1+hw, y1+hw, false)
		return
	}
	ux, uy := dx/length*hw, dy/length*hw
	nx, ny := -uy, ux

	sx, sy := x1-ux, y1-uy
	ex, ey := x2+ux, y2+uy
	pa.moveTo(sx+nx, sy+ny)
	pa.lineTo(ex+nx, ey+ny)
	pa.lineTo(ex-nx, ey-ny)
	pa.lineTo(sx-nx, sy-ny)
	pa.close()
}

func (pa *path) bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(float64(pa.minX))),
		int(math.Floor(float64(pa.minY))),
		int(math.Ceil(float64(pa.maxX))),
		int(math.Ceil(float64(pa.maxY))),
	)
}

func (pa *path) replay(z *vector.Rasterizer, ox, oy float32) {
	for _, op := range pa.ops {
		switch op.kind {
		case opMove:
			z.MoveTo(op.pts[0][0]-ox, op.pts[0][1]-oy)
		case opLine:
			z.LineTo(op.pts[0][0]-ox, op.pts[0][1]-oy)
		case opCube:
			z.CubeTo(
				op.pts[0][0]-ox, op.pts[0][1]-oy,
				op.pts[1][0]-ox, op.pts[1][1]-oy,
				op.pts[2][0]-ox, op.pts[2][1]-oy,
			)
		case opClose:
			z.ClosePath()
		}
	}
}
