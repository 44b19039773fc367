package render

import (
	"image/color"
	"image/draw"
	"sync"
)

// Layer selects which surface receives drawing operations.
type Layer int

const (
	// LayerForeground is the alpha front surface, composited on top.
	LayerForeground Layer = iota
	// LayerBackground is the opaque back surface, composited underneath.
	LayerBackground
)

// String returns the layer name.
func (l Layer) String() string {
	if l == LayerBackground {
		return "background"
	}
	return "foreground"
}

// DoubleBuffer owns the front and back surfaces of a display and the single
// frame-composition lock that guards both of them.
//
// Every read or write of either surface, and every change of the active
// layer, must happen while the lock is held. The presenter takes the same
// lock for the duration of its composite, so a group of drawing calls made
// inside WithFrontLock is never presented half-applied.
type DoubleBuffer struct {
	mu     sync.Mutex
	front  *Surface
	back   *Surface
	active Layer
}

// NewDoubleBuffer creates the two surfaces: the front cleared to transparent
// and the back cleared to background.
func NewDoubleBuffer(width, height int, background color.Color) (*DoubleBuffer, error) {
	front, err := NewSurface(width, height, FormatAlpha)
	if err != nil {
		return nil, err
	}
	back, err := NewSurface(width, height, FormatOpaque)
	if err != nil {
		return nil, err
	}
	back.SetBackground(background)
	back.Clear()

	return &DoubleBuffer{
		front:  front,
		back:   back,
		active: LayerForeground,
	}, nil
}

// Lock acquires the frame-composition lock.
func (b *DoubleBuffer) Lock() { b.mu.Lock() }

// Unlock releases the frame-composition lock.
func (b *DoubleBuffer) Unlock() { b.mu.Unlock() }

// WithFrontLock runs fn while holding the frame-composition lock.
func (b *DoubleBuffer) WithFrontLock(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

// Front returns the alpha surface.
func (b *DoubleBuffer) Front() *Surface { return b.front }

// Back returns the opaque surface.
func (b *DoubleBuffer) Back() *Surface { return b.back }

// Width returns the buffer width in pixels.
func (b *DoubleBuffer) Width() int { return b.front.Width() }

// Height returns the buffer height in pixels.
func (b *DoubleBuffer) Height() int { return b.front.Height() }

// ActiveLayer returns the layer drawing operations target.
// The lock must be held.
func (b *DoubleBuffer) ActiveLayer() Layer { return b.active }

// Active returns the surface drawing operations target.
// The lock must be held.
func (b *DoubleBuffer) Active() *Surface {
	if b.active == LayerBackground {
		return b.back
	}
	return b.front
}

// SwitchToBackground makes the front surface clear to transparent and
// rebinds drawing to the back surface. The lock must be held.
func (b *DoubleBuffer) SwitchToBackground() {
	b.front.SetBackground(Transparent)
	b.active = LayerBackground
}

// SwitchToForeground rebinds drawing to the front surface.
// The lock must be held.
func (b *DoubleBuffer) SwitchToForeground() {
	b.active = LayerForeground
}

// Composite draws the back surface and then the front surface over it onto
// dst. The lock must be held.
func (b *DoubleBuffer) Composite(dst draw.Image) {
	b.back.DrawTo(dst, draw.Src)
	b.front.DrawTo(dst, draw.Over)
}
