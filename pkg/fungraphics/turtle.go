package fungraphics

import (
	"image"
	"image/color"
	"math"
)

// TurtleGraphics is a logo-style turtle that draws on a Graphics. It starts
// at the center of the frame facing up, with the pen up and black ink.
// A TurtleGraphics is not safe for concurrent use.
type TurtleGraphics struct {
	g       Graphics
	x, y    int
	angle   float64 // radians; 0 faces right, -π/2 faces up
	penDown bool
	color   color.Color
	width   float64
}

// frontLocker is implemented by surfaces that can draw a group of
// operations atomically.
type frontLocker interface {
	WithFrontLock(fn func(g Graphics))
}

// NewTurtle places a turtle on g. Out-of-frame diagnostics are disabled on
// g when it supports them, since turtles routinely walk off screen.
func NewTurtle(g Graphics) *TurtleGraphics {
	if cb, ok := g.(interface{ SetCheckBounds(bool) }); ok {
		cb.SetCheckBounds(false)
	}
	return &TurtleGraphics{
		g:     g,
		x:     g.FrameWidth() / 2,
		y:     g.FrameHeight() / 2,
		angle: -math.Pi / 2,
		color: color.Black,
		width: 1,
	}
}

// draw runs fn with the turtle's ink and pen width, restoring the
// surface's own color and width afterwards.
func (t *TurtleGraphics) draw(fn func(g Graphics)) {
	run := func(g Graphics) {
		prevColor, prevWidth := g.Color(), g.PenWidth()
		g.SetColor(t.color)
		g.SetPenWidth(t.width)
		fn(g)
		g.SetColor(prevColor)
		g.SetPenWidth(prevWidth)
	}
	if l, ok := t.g.(frontLocker); ok {
		l.WithFrontLock(run)
		return
	}
	run(t.g)
}

// PenDown lowers the pen and marks the current position.
func (t *TurtleGraphics) PenDown() {
	t.penDown = true
	t.draw(func(g Graphics) { g.SetPixel(t.x, t.y) })
}

// PenUp raises the pen; moves no longer draw.
func (t *TurtleGraphics) PenUp() { t.penDown = false }

// IsPenDown reports whether moves draw.
func (t *TurtleGraphics) IsPenDown() bool { return t.penDown }

// Forward moves the turtle distance pixels along its heading, drawing a
// line when the pen is down. A negative distance moves backwards.
func (t *TurtleGraphics) Forward(distance float64) {
	nx := t.x + int(math.Round(math.Cos(t.angle)*distance))
	ny := t.y + int(math.Round(math.Sin(t.angle)*distance))
	if t.penDown {
		x, y := t.x, t.y
		t.draw(func(g Graphics) { g.DrawLine(x, y, nx, ny) })
	}
	t.x, t.y = nx, ny
}

// Jump moves the turtle to (x, y) without drawing the path; the
// destination is marked when the pen is down.
func (t *TurtleGraphics) Jump(x, y int) {
	t.x, t.y = x, y
	if t.penDown {
		t.draw(func(g Graphics) { g.SetPixel(x, y) })
	}
}

// Turn rotates the heading clockwise by deg degrees.
func (t *TurtleGraphics) Turn(deg float64) { t.angle += deg * math.Pi / 180 }

// TurnRad rotates the heading clockwise by rad radians.
func (t *TurtleGraphics) TurnRad(rad float64) { t.angle += rad }

// SetAngle sets the heading in degrees, 0 facing right and -90 facing up.
func (t *TurtleGraphics) SetAngle(deg float64) { t.angle = deg * math.Pi / 180 }

// SetAngleRad sets the heading in radians.
func (t *TurtleGraphics) SetAngleRad(rad float64) { t.angle = rad }

// Angle returns the heading in degrees.
func (t *TurtleGraphics) Angle() float64 { return t.angle * 180 / math.Pi }

// Position returns the current position.
func (t *TurtleGraphics) Position() image.Point { return image.Pt(t.x, t.y) }

// ChangeColor sets the ink.
func (t *TurtleGraphics) ChangeColor(c color.Color) { t.color = c }

// SetWidth sets the stroke width of the lines the turtle draws.
func (t *TurtleGraphics) SetWidth(w float64) { t.width = w }
