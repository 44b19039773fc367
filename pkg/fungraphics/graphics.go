package fungraphics

import (
	"image"
	"image/color"
	"io/fs"

	"github.com/opd-ai/go-fungraphics/internal/render"
)

// Engine types re-exported for clients of the drawing surface.
type (
	Bitmap              = render.Bitmap
	TextStyle           = render.TextStyle
	FontStyle           = render.FontStyle
	Layer               = render.Layer
	Display             = render.Display
	Frame               = render.Frame
	KeyEvent            = render.KeyEvent
	MouseEvent          = render.MouseEvent
	MouseButton         = render.MouseButton
	KeyListener         = render.KeyListener
	MouseListener       = render.MouseListener
	MouseMotionListener = render.MouseMotionListener
	KeyFuncs            = render.KeyFuncs
	MouseFuncs          = render.MouseFuncs
)

// Font styles, families and layers.
const (
	FontStyleRegular    = render.FontStyleRegular
	FontStyleBold       = render.FontStyleBold
	FontStyleItalic     = render.FontStyleItalic
	FontStyleBoldItalic = render.FontStyleBoldItalic

	FamilySansSerif  = render.FamilySansSerif
	FamilyMonospaced = render.FamilyMonospaced

	LayerForeground = render.LayerForeground
	LayerBackground = render.LayerBackground

	MouseButtonNone   = render.MouseButtonNone
	MouseButtonLeft   = render.MouseButtonLeft
	MouseButtonMiddle = render.MouseButtonMiddle
	MouseButtonRight  = render.MouseButtonRight
)

// LoadBitmap decodes the image file at path.
// Failures are *CategorizedError values in the asset category.
func LoadBitmap(path string) (*Bitmap, error) {
	b, err := render.LoadBitmap(path)
	if err != nil {
		return nil, NewCategorizedError(err, ErrorCategoryAsset, SeverityError).WithContext("path", path)
	}
	return b, nil
}

// LoadBitmapFS decodes the named image from fsys.
func LoadBitmapFS(fsys fs.FS, name string) (*Bitmap, error) {
	b, err := render.LoadBitmapFS(fsys, name)
	if err != nil {
		return nil, NewCategorizedError(err, ErrorCategoryAsset, SeverityError).WithContext("path", name)
	}
	return b, nil
}

// ParseColor parses a color name, "#rrggbb[aa]" or "r,g,b[,a]".
func ParseColor(s string) (color.RGBA, error) { return render.ParseColor(s) }

// NewBitmap wraps an already decoded image.
func NewBitmap(name string, img image.Image) *Bitmap {
	return render.NewBitmap(name, img)
}

// Graphics is the drawing surface. Every operation targets the active
// layer. Coordinates are pixels from the top-left corner; drawing outside
// the frame is clipped and never fails.
type Graphics interface {
	// Clear fills the active layer with its clear color.
	Clear()
	// ClearColor fills the active layer with c.
	ClearColor(c color.Color)
	SetColor(c color.Color)
	Color() color.RGBA
	// SetPenWidth sets the stroke width of lines and outlines.
	SetPenWidth(w float64)
	PenWidth() float64

	SetPixel(x, y int)
	SetPixelColor(x, y int, c color.Color)
	GetPixel(x, y int) color.RGBA

	DrawLine(x1, y1, x2, y2 int)
	DrawRect(x, y, width, height int)
	DrawFillRect(x, y, width, height int)
	// DrawCircle outlines the circle of the given diameter whose bounding
	// box starts at (x, y).
	DrawCircle(x, y, diameter int)
	// DrawFilledCircle fills the circle of the given diameter whose
	// bounding box starts at (x, y).
	DrawFilledCircle(x, y, diameter int)
	DrawOval(x, y, width, height int)
	DrawFilledOval(x, y, width, height int)
	DrawPolygon(pts []image.Point)
	// DrawFilledPolygon fills pts with c. The current color is unchanged.
	DrawFilledPolygon(pts []image.Point, c color.Color)

	// DrawString draws s with its baseline starting at (x, y) in the
	// current color and font.
	DrawString(x, y int, s string)
	DrawStringStyled(x, y int, s string, c color.Color, style TextStyle)
	// DrawFancyString draws s in c with a drop shadow.
	DrawFancyString(x, y int, s string, c color.Color, size float64)

	// DrawPicture draws b centered on (x, y).
	DrawPicture(x, y int, b *Bitmap)
	// DrawTransformedPicture draws b centered on (x, y), rotated by angle
	// radians and scaled by scale.
	DrawTransformedPicture(x, y int, angle, scale float64, b *Bitmap)
	// DrawMirroredPicture draws b flipped horizontally, centered on (x, y)
	// and rotated by angle radians.
	DrawMirroredPicture(x, y int, angle float64, b *Bitmap)

	FrameWidth() int
	FrameHeight() int
}

// DualLayerGraphics selects which layer Graphics operations draw into.
type DualLayerGraphics interface {
	// DrawBackground directs drawing to the opaque backdrop and makes the
	// foreground clear to transparent, so the backdrop shows through.
	DrawBackground()
	// DrawForeground directs drawing back to the foreground.
	DrawForeground()
}

// Canvas is the Graphics view handed to WithFrontLock callbacks. It draws
// without taking the composition lock and must not escape the callback.
type Canvas struct {
	fg *FunGraphics
}

var (
	_ Graphics          = (*Canvas)(nil)
	_ DualLayerGraphics = (*Canvas)(nil)
)

// p returns the painter of the active layer and counts a draw call.
func (c *Canvas) p() *render.Painter {
	c.fg.metrics.IncrementDrawCalls()
	return c.cur()
}

func (c *Canvas) cur() *render.Painter {
	if c.fg.buf.ActiveLayer() == render.LayerBackground {
		return c.fg.back
	}
	return c.fg.front
}

// miss reports a drawing call that touched no pixel.
func (c *Canvas) miss(visible bool, op string, args ...any) {
	if visible || !c.fg.checkBounds.Load() {
		return
	}
	c.fg.metrics.IncrementOutOfBounds()
	c.fg.logger.Warn("drawing outside the frame", append([]any{"op", op}, args...)...)
}

func (c *Canvas) Clear() { c.p().Clear() }
func (c *Canvas) ClearColor(col color.Color) { c.p().ClearColor(col) }
func (c *Canvas) SetColor(col color.Color) { c.cur().SetColor(col) }
func (c *Canvas) Color() color.RGBA { return c.cur().Color() }
func (c *Canvas) SetPenWidth(w float64) { c.cur().SetPenWidth(w) }
func (c *Canvas) PenWidth() float64 { return c.cur().PenWidth() }
func (c *Canvas) FrameWidth() int { return c.fg.buf.Width() }
func (c *Canvas) FrameHeight() int { return c.fg.buf.Height() }

// DrawBackground implements DualLayerGraphics.
func (c *Canvas) DrawBackground() { c.fg.buf.SwitchToBackground() }

// DrawForeground implements DualLayerGraphics.
func (c *Canvas) DrawForeground() { c.fg.buf.SwitchToForeground() }

func (c *Canvas) SetPixel(x, y int) {
	c.miss(c.p().SetPixel(x, y), "SetPixel", "x", x, "y", y)
}

func (c *Canvas) SetPixelColor(x, y int, col color.Color) {
	c.miss(c.p().Surface().SetPixel(x, y, col), "SetPixelColor", "x", x, "y", y)
}

// GetPixel returns the color at (x, y), or transparent black outside.
func (c *Canvas) GetPixel(x, y int) color.RGBA {
	s := c.p().Surface()
	c.miss(s.InBounds(x, y), "GetPixel", "x", x, "y", y)
	return s.At(x, y)
}

func (c *Canvas) DrawLine(x1, y1, x2, y2 int) {
	c.miss(c.p().DrawLine(x1, y1, x2, y2), "DrawLine", "x1", x1, "y1", y1, "x2", x2, "y2", y2)
}

func (c *Canvas) DrawRect(x, y, width, height int) {
	c.miss(c.p().DrawRect(x, y, width, height), "DrawRect", "x", x, "y", y)
}

func (c *Canvas) DrawFillRect(x, y, width, height int) {
	c.miss(c.p().FillRect(x, y, width, height), "DrawFillRect", "x", x, "y", y)
}

func (c *Canvas) DrawCircle(x, y, diameter int) {
	c.miss(c.p().DrawOval(x, y, diameter, diameter), "DrawCircle", "x", x, "y", y)
}

func (c *Canvas) DrawFilledCircle(x, y, diameter int) {
	c.miss(c.p().FillOval(x, y, diameter, diameter), "DrawFilledCircle", "x", x, "y", y)
}

func (c *Canvas) DrawOval(x, y, width, height int) {
	c.miss(c.p().DrawOval(x, y, width, height), "DrawOval", "x", x, "y", y)
}

func (c *Canvas) DrawFilledOval(x, y, width, height int) {
	c.miss(c.p().FillOval(x, y, width, height), "DrawFilledOval", "x", x, "y", y)
}

func (c *Canvas) DrawPolygon(pts []image.Point) {
	c.miss(c.p().DrawPolygon(pts), "DrawPolygon", "points", len(pts))
}

func (c *Canvas) DrawFilledPolygon(pts []image.Point, col color.Color) {
	p := c.p()
	prev := p.Color()
	p.SetColor(col)
	visible := p.FillPolygon(pts)
	p.SetColor(prev)
	c.miss(visible, "DrawFilledPolygon", "points", len(pts))
}

func (c *Canvas) DrawString(x, y int, s string) {
	visible, err := c.p().DrawString(x, y, s)
	c.text(visible, err, x, y)
}

func (c *Canvas) DrawStringStyled(x, y int, s string, col color.Color, style TextStyle) {
	visible, err := c.p().DrawStringStyled(x, y, s, col, style)
	c.text(visible, err, x, y)
}

func (c *Canvas) DrawFancyString(x, y int, s string, col color.Color, size float64) {
	visible, err := c.p().DrawFancyString(x, y, s, col, size)
	c.text(visible, err, x, y)
}

func (c *Canvas) text(visible bool, err error, x, y int) {
	if err != nil {
		c.fg.report(NewCategorizedError(err, ErrorCategoryAsset, SeverityError))
		return
	}
	c.miss(visible, "DrawString", "x", x, "y", y)
}

func (c *Canvas) DrawPicture(x, y int, b *Bitmap) {
	if b == nil {
		return
	}
	c.miss(c.p().DrawBitmap(x, y, b), "DrawPicture", "x", x, "y", y, "bitmap", b.Name())
}

func (c *Canvas) DrawTransformedPicture(x, y int, angle, scale float64, b *Bitmap) {
	if b == nil {
		return
	}
	c.miss(c.p().DrawTransformedBitmap(x, y, angle, scale, b), "DrawTransformedPicture", "x", x, "y", y, "bitmap", b.Name())
}

func (c *Canvas) DrawMirroredPicture(x, y int, angle float64, b *Bitmap) {
	if b == nil {
		return
	}
	c.miss(c.p().DrawMirroredBitmap(x, y, angle, b), "DrawMirroredPicture", "x", x, "y", y, "bitmap", b.Name())
}
