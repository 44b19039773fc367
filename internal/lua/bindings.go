package lua

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-fungraphics/internal/render"
	"github.com/opd-ai/go-fungraphics/pkg/fungraphics"
)

// Bindings exposes a fungraphics.Graphics to Lua as global fg_*
// functions. Colors are passed either as a string understood by
// fungraphics.ParseColor or as r, g, b[, a] numbers in 0-255.
type Bindings struct {
	runtime *Runtime
	images  *render.BitmapCache

	mu      sync.RWMutex
	g       fungraphics.Graphics
	style   *fungraphics.TextStyle
	baseDir string
}

// NewBindings registers the drawing functions in runtime. They draw on g
// until SetTarget replaces it.
func NewBindings(runtime *Runtime, g fungraphics.Graphics) (*Bindings, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	if g == nil {
		return nil, ErrNilGraphics
	}

	b := &Bindings{
		runtime: runtime,
		images:  render.NewBitmapCache(),
		g:       g,
	}
	b.registerFunctions()
	return b, nil
}

func (b *Bindings) registerFunctions() {
	// Surface
	b.runtime.SetGoFunction("fg_width", b.width, 0, false)
	b.runtime.SetGoFunction("fg_height", b.height, 0, false)
	b.runtime.SetGoFunction("fg_clear", b.clear, 0, true)
	b.runtime.SetGoFunction("fg_background", b.background, 0, false)
	b.runtime.SetGoFunction("fg_foreground", b.foreground, 0, false)

	// Pen
	b.runtime.SetGoFunction("fg_set_color", b.setColor, 1, true)
	b.runtime.SetGoFunction("fg_get_color", b.getColor, 0, false)
	b.runtime.SetGoFunction("fg_pen_width", b.penWidth, 0, true)

	// Shapes
	b.runtime.SetGoFunction("fg_pixel", b.pixel, 2, true)
	b.runtime.SetGoFunction("fg_get_pixel", b.getPixel, 2, false)
	b.runtime.SetGoFunction("fg_line", b.line, 4, false)
	b.runtime.SetGoFunction("fg_rect", b.rect, 4, false)
	b.runtime.SetGoFunction("fg_fill_rect", b.fillRect, 4, false)
	b.runtime.SetGoFunction("fg_circle", b.circle, 3, false)
	b.runtime.SetGoFunction("fg_fill_circle", b.fillCircle, 3, false)
	b.runtime.SetGoFunction("fg_oval", b.oval, 4, false)
	b.runtime.SetGoFunction("fg_fill_oval", b.fillOval, 4, false)
	b.runtime.SetGoFunction("fg_polygon", b.polygon, 1, false)
	b.runtime.SetGoFunction("fg_fill_polygon", b.fillPolygon, 1, true)

	// Text
	b.runtime.SetGoFunction("fg_font", b.font, 0, true)
	b.runtime.SetGoFunction("fg_text", b.text, 3, false)
	b.runtime.SetGoFunction("fg_fancy_text", b.fancyText, 4, true)

	// Images
	b.runtime.SetGoFunction("fg_load_image", b.loadImage, 1, false)
	b.runtime.SetGoFunction("fg_image_size", b.imageSize, 1, false)
	b.runtime.SetGoFunction("fg_image", b.drawImage, 3, true)
	b.runtime.SetGoFunction("fg_mirrored_image", b.drawMirroredImage, 3, true)
}

// SetTarget replaces the drawing surface and returns the previous one.
func (b *Bindings) SetTarget(g fungraphics.Graphics) fungraphics.Graphics {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.g
	b.g = g
	return prev
}

// SetBaseDir sets the directory relative image paths are resolved against.
func (b *Bindings) SetBaseDir(dir string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.baseDir = dir
}

// ClearImages drops the decoded image cache.
func (b *Bindings) ClearImages() { b.images.Clear() }

func (b *Bindings) target() fungraphics.Graphics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.g
}

// --- Surface ---

func (b *Bindings) width(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(b.target().FrameWidth()))), nil
}

func (b *Bindings) height(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(b.target().FrameHeight()))), nil
}

// clear handles fg_clear([color]).
func (b *Bindings) clear(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	g := b.target()
	if len(args) == 0 {
		g.Clear()
		return c.Next(), nil
	}
	col, _, err := colorArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("fg_clear: %w", err)
	}
	g.ClearColor(col)
	return c.Next(), nil
}

func (b *Bindings) background(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	if dl, ok := b.target().(fungraphics.DualLayerGraphics); ok {
		dl.DrawBackground()
	}
	return c.Next(), nil
}

func (b *Bindings) foreground(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	if dl, ok := b.target().(fungraphics.DualLayerGraphics); ok {
		dl.DrawForeground()
	}
	return c.Next(), nil
}

// --- Pen ---

// setColor handles fg_set_color(color).
func (b *Bindings) setColor(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	col, _, err := colorArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("fg_set_color: %w", err)
	}
	b.target().SetColor(col)
	return c.Next(), nil
}

// getColor handles fg_get_color() -> r, g, b, a.
func (b *Bindings) getColor(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return pushColor(t, c, b.target().Color()), nil
}

// penWidth handles fg_pen_width([w]) -> w.
func (b *Bindings) penWidth(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	g := b.target()
	if len(args) > 0 {
		w, err := getFloatArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("fg_pen_width: %w", err)
		}
		g.SetPenWidth(w)
	}
	return c.PushingNext1(t.Runtime, rt.FloatValue(g.PenWidth())), nil
}

// --- Shapes ---

// pixel handles fg_pixel(x, y[, color]).
func (b *Bindings) pixel(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	xy, err := getIntArgs(args, 0, 2)
	if err != nil {
		return nil, fmt.Errorf("fg_pixel: %w", err)
	}
	g := b.target()
	if len(args) > 2 {
		col, _, err := colorArg(args, 2)
		if err != nil {
			return nil, fmt.Errorf("fg_pixel: %w", err)
		}
		g.SetPixelColor(xy[0], xy[1], col)
		return c.Next(), nil
	}
	g.SetPixel(xy[0], xy[1])
	return c.Next(), nil
}

// getPixel handles fg_get_pixel(x, y) -> r, g, b, a.
func (b *Bindings) getPixel(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	xy, err := getIntArgs(getAllArgs(c), 0, 2)
	if err != nil {
		return nil, fmt.Errorf("fg_get_pixel: %w", err)
	}
	return pushColor(t, c, b.target().GetPixel(xy[0], xy[1])), nil
}

// shape4 binds a Graphics method taking four ints.
func (b *Bindings) shape4(name string, c *rt.GoCont, draw func(g fungraphics.Graphics, x, y, w, h int)) (rt.Cont, error) {
	v, err := getIntArgs(getAllArgs(c), 0, 4)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	draw(b.target(), v[0], v[1], v[2], v[3])
	return c.Next(), nil
}

func (b *Bindings) line(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shape4("fg_line", c, fungraphics.Graphics.DrawLine)
}

func (b *Bindings) rect(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shape4("fg_rect", c, fungraphics.Graphics.DrawRect)
}

func (b *Bindings) fillRect(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shape4("fg_fill_rect", c, fungraphics.Graphics.DrawFillRect)
}

func (b *Bindings) oval(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shape4("fg_oval", c, fungraphics.Graphics.DrawOval)
}

func (b *Bindings) fillOval(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shape4("fg_fill_oval", c, fungraphics.Graphics.DrawFilledOval)
}

// circle handles fg_circle(x, y, diameter).
func (b *Bindings) circle(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	v, err := getIntArgs(getAllArgs(c), 0, 3)
	if err != nil {
		return nil, fmt.Errorf("fg_circle: %w", err)
	}
	b.target().DrawCircle(v[0], v[1], v[2])
	return c.Next(), nil
}

// fillCircle handles fg_fill_circle(x, y, diameter).
func (b *Bindings) fillCircle(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	v, err := getIntArgs(getAllArgs(c), 0, 3)
	if err != nil {
		return nil, fmt.Errorf("fg_fill_circle: %w", err)
	}
	b.target().DrawFilledCircle(v[0], v[1], v[2])
	return c.Next(), nil
}

// polygon handles fg_polygon({x1, y1, x2, y2, ...}).
func (b *Bindings) polygon(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	pts, err := pointsArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("fg_polygon: %w", err)
	}
	b.target().DrawPolygon(pts)
	return c.Next(), nil
}

// fillPolygon handles fg_fill_polygon({x1, y1, ...}[, color]). Without a
// color the current one is used.
func (b *Bindings) fillPolygon(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	pts, err := pointsArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("fg_fill_polygon: %w", err)
	}
	g := b.target()
	col := g.Color()
	if len(args) > 1 {
		if col, _, err = colorArg(args, 1); err != nil {
			return nil, fmt.Errorf("fg_fill_polygon: %w", err)
		}
	}
	g.DrawFilledPolygon(pts, col)
	return c.Next(), nil
}

// --- Text ---

// font handles fg_font([family[, style[, size]]]). With no arguments the
// default font is restored.
func (b *Bindings) font(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	if len(args) == 0 {
		b.mu.Lock()
		b.style = nil
		b.mu.Unlock()
		return c.Next(), nil
	}

	style := render.DefaultTextStyle
	family, err := getStringArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("fg_font: family: %w", err)
	}
	style.Family = family
	if len(args) > 1 {
		s, err := getStringArg(args, 1)
		if err != nil {
			return nil, fmt.Errorf("fg_font: style: %w", err)
		}
		if style.Style, err = render.ParseFontStyle(s); err != nil {
			return nil, fmt.Errorf("fg_font: %w", err)
		}
	}
	if len(args) > 2 {
		if style.Size, err = getFloatArg(args, 2); err != nil {
			return nil, fmt.Errorf("fg_font: size: %w", err)
		}
	}

	b.mu.Lock()
	b.style = &style
	b.mu.Unlock()
	return c.Next(), nil
}

// text handles fg_text(x, y, s) in the current color and fg_font.
func (b *Bindings) text(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	xy, err := getIntArgs(args, 0, 2)
	if err != nil {
		return nil, fmt.Errorf("fg_text: %w", err)
	}
	s, err := getStringArg(args, 2)
	if err != nil {
		return nil, fmt.Errorf("fg_text: text: %w", err)
	}

	b.mu.RLock()
	style := b.style
	g := b.g
	b.mu.RUnlock()

	if style == nil {
		g.DrawString(xy[0], xy[1], s)
	} else {
		g.DrawStringStyled(xy[0], xy[1], s, g.Color(), *style)
	}
	return c.Next(), nil
}

// fancyText handles fg_fancy_text(x, y, s, size[, color]).
func (b *Bindings) fancyText(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	xy, err := getIntArgs(args, 0, 2)
	if err != nil {
		return nil, fmt.Errorf("fg_fancy_text: %w", err)
	}
	s, err := getStringArg(args, 2)
	if err != nil {
		return nil, fmt.Errorf("fg_fancy_text: text: %w", err)
	}
	size, err := getFloatArg(args, 3)
	if err != nil {
		return nil, fmt.Errorf("fg_fancy_text: size: %w", err)
	}
	g := b.target()
	col := g.Color()
	if len(args) > 4 {
		if col, _, err = colorArg(args, 4); err != nil {
			return nil, fmt.Errorf("fg_fancy_text: %w", err)
		}
	}
	g.DrawFancyString(xy[0], xy[1], s, col, size)
	return c.Next(), nil
}

// --- Images ---

// loadImage handles fg_load_image(path) -> image | nil, message.
func (b *Bindings) loadImage(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	path, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("fg_load_image: path: %w", err)
	}

	b.mu.RLock()
	if b.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(b.baseDir, path)
	}
	b.mu.RUnlock()

	bm, err := b.images.Load(path)
	if err != nil {
		return c.PushingNext(t.Runtime, rt.NilValue, rt.StringValue(err.Error())), nil
	}
	return c.PushingNext1(t.Runtime, rt.UserDataValue(rt.NewUserData(bm, nil))), nil
}

// imageSize handles fg_image_size(image) -> width, height.
func (b *Bindings) imageSize(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	bm, err := imageArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("fg_image_size: %w", err)
	}
	return c.PushingNext(t.Runtime, rt.IntValue(int64(bm.Width())), rt.IntValue(int64(bm.Height()))), nil
}

// drawImage handles fg_image(image, x, y[, angle[, scale]]), centered on
// (x, y) with the angle in radians.
func (b *Bindings) drawImage(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	bm, err := imageArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("fg_image: %w", err)
	}
	xy, err := getIntArgs(args, 1, 2)
	if err != nil {
		return nil, fmt.Errorf("fg_image: %w", err)
	}
	angle, scale := 0.0, 1.0
	if len(args) > 3 {
		if angle, err = getFloatArg(args, 3); err != nil {
			return nil, fmt.Errorf("fg_image: angle: %w", err)
		}
	}
	if len(args) > 4 {
		if scale, err = getFloatArg(args, 4); err != nil {
			return nil, fmt.Errorf("fg_image: scale: %w", err)
		}
	}

	g := b.target()
	if angle == 0 && scale == 1 {
		g.DrawPicture(xy[0], xy[1], bm)
	} else {
		g.DrawTransformedPicture(xy[0], xy[1], angle, scale, bm)
	}
	return c.Next(), nil
}

// drawMirroredImage handles fg_mirrored_image(image, x, y[, angle]).
func (b *Bindings) drawMirroredImage(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	bm, err := imageArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("fg_mirrored_image: %w", err)
	}
	xy, err := getIntArgs(args, 1, 2)
	if err != nil {
		return nil, fmt.Errorf("fg_mirrored_image: %w", err)
	}
	angle := 0.0
	if len(args) > 3 {
		if angle, err = getFloatArg(args, 3); err != nil {
			return nil, fmt.Errorf("fg_mirrored_image: angle: %w", err)
		}
	}
	b.target().DrawMirroredPicture(xy[0], xy[1], angle, bm)
	return c.Next(), nil
}

// --- Argument helpers ---

// getAllArgs combines Args() and Etc() to get all arguments including varargs.
func getAllArgs(c *rt.GoCont) []rt.Value {
	return append(c.Args(), c.Etc()...)
}

func toFloat(v rt.Value) (float64, bool) {
	if f, ok := v.TryFloat(); ok {
		return f, true
	}
	if i, ok := v.TryInt(); ok {
		return float64(i), true
	}
	return 0, false
}

// getFloatArg gets a float argument from the combined args slice.
func getFloatArg(args []rt.Value, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("argument %d out of range (have %d)", idx+1, len(args))
	}
	if f, ok := toFloat(args[idx]); ok {
		return f, nil
	}
	return 0, fmt.Errorf("argument %d is not a number", idx+1)
}

// getIntArgs reads n consecutive integer arguments starting at idx.
// Floats are truncated.
func getIntArgs(args []rt.Value, idx, n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		f, err := getFloatArg(args, idx+i)
		if err != nil {
			return nil, err
		}
		out[i] = int(f)
	}
	return out, nil
}

// getStringArg gets a string argument from the combined args slice.
func getStringArg(args []rt.Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("argument %d out of range (have %d)", idx+1, len(args))
	}
	if s, ok := args[idx].TryString(); ok {
		return s, nil
	}
	return "", fmt.Errorf("argument %d is not a string", idx+1)
}

// colorArg reads a color starting at args[idx]: a string, or r, g, b and
// an optional a in 0-255. It returns the color and the number of
// arguments consumed.
func colorArg(args []rt.Value, idx int) (color.RGBA, int, error) {
	if idx >= len(args) {
		return color.RGBA{}, 0, fmt.Errorf("missing color")
	}
	if s, ok := args[idx].TryString(); ok {
		col, err := fungraphics.ParseColor(s)
		if err != nil {
			return color.RGBA{}, 0, err
		}
		return col, 1, nil
	}

	var ch [4]uint8
	ch[3] = 255
	n := 3
	if idx+3 < len(args) {
		if _, ok := toFloat(args[idx+3]); ok {
			n = 4
		}
	}
	for i := 0; i < n; i++ {
		f, err := getFloatArg(args, idx+i)
		if err != nil {
			return color.RGBA{}, 0, fmt.Errorf("color: %w", err)
		}
		ch[i] = clampByte(f)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, n, nil
}

func clampByte(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}

// pointsArg reads a flat table {x1, y1, x2, y2, ...}.
func pointsArg(args []rt.Value, idx int) ([]image.Point, error) {
	if idx >= len(args) {
		return nil, fmt.Errorf("missing points table")
	}
	tbl, ok := args[idx].TryTable()
	if !ok {
		return nil, fmt.Errorf("argument %d is not a table", idx+1)
	}

	var pts []image.Point
	for i := int64(1); ; i += 2 {
		xv := tbl.Get(rt.IntValue(i))
		if xv == rt.NilValue {
			break
		}
		x, okX := toFloat(xv)
		y, okY := toFloat(tbl.Get(rt.IntValue(i + 1)))
		if !okX || !okY {
			return nil, fmt.Errorf("point %d is not a pair of numbers", (i+1)/2)
		}
		pts = append(pts, image.Pt(int(x), int(y)))
	}
	return pts, nil
}

func imageArg(args []rt.Value, idx int) (*fungraphics.Bitmap, error) {
	if idx >= len(args) {
		return nil, ErrInvalidImage
	}
	ud, ok := args[idx].TryUserData()
	if !ok {
		return nil, ErrInvalidImage
	}
	bm, ok := ud.Value().(*fungraphics.Bitmap)
	if !ok {
		return nil, ErrInvalidImage
	}
	return bm, nil
}

func pushColor(t *rt.Thread, c *rt.GoCont, col color.RGBA) rt.Cont {
	return c.PushingNext(t.Runtime,
		rt.IntValue(int64(col.R)),
		rt.IntValue(int64(col.G)),
		rt.IntValue(int64(col.B)),
		rt.IntValue(int64(col.A)),
	)
}
