package fungraphics

import (
	"image/color"
	"sync"
)

// Drawable is an object that knows how to draw itself.
type Drawable interface {
	Draw(g Graphics)
}

// ListGraphics keeps a list of Drawables and repaints them all on demand.
// The list may be modified from any goroutine, including while a repaint
// is in progress on another one.
type ListGraphics struct {
	fg *FunGraphics

	mu    sync.Mutex
	items []Drawable
}

// NewListGraphics manages a drawable list on fg.
func NewListGraphics(fg *FunGraphics) *ListGraphics {
	return &ListGraphics{fg: fg}
}

// Surface returns the underlying drawing surface.
func (l *ListGraphics) Surface() *FunGraphics { return l.fg }

// AddDrawable appends d to the list. Later drawables are painted on top.
func (l *ListGraphics) AddDrawable(d Drawable) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, d)
}

// RemoveDrawable removes the first occurrence of d and reports whether it
// was found. d must be of a comparable type, such as a pointer.
func (l *ListGraphics) RemoveDrawable(d Drawable) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, item := range l.items {
		if item == d {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll empties the list.
func (l *ListGraphics) RemoveAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Len returns the number of drawables in the list.
func (l *ListGraphics) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// SetBackgroundColor sets the color Repaint clears to.
func (l *ListGraphics) SetBackgroundColor(c color.Color) {
	l.fg.SetBackgroundColor(c)
}

// Repaint clears the active layer and draws every drawable in list order,
// as one atomic frame. Drawables must draw through the Graphics they are
// given rather than through the surface.
func (l *ListGraphics) Repaint() {
	l.fg.WithFrontLock(func(g Graphics) {
		l.mu.Lock()
		defer l.mu.Unlock()
		g.Clear()
		for _, d := range l.items {
			d.Draw(g)
		}
	})
}
