package render

import (
	"errors"
	"image"
	"image/draw"
	"sync"
)

// ErrDisplayClosed is returned by Acquire once a display has been closed.
var ErrDisplayClosed = errors.New("display closed")

// Frame is one presentation target obtained from a Display.
type Frame interface {
	// Target is the image the presenter composites into.
	Target() draw.Image
	// Present makes the composited target visible.
	Present() error
	// Release returns the frame to its display. It is called exactly once
	// per acquired frame, whether or not Present succeeded.
	Release()
}

// Display is a presentation device: a window, a terminal or memory.
type Display interface {
	// Acquire returns the next frame to draw into. It returns
	// ErrDisplayClosed when the display is gone for good; other errors are
	// transient and the caller may retry on the next iteration.
	Acquire() (Frame, error)
	// Close releases the display.
	Close() error
}

// swapChain is a two-image present queue shared by the CPU displays: the
// presenter draws into staging, Present swaps it with shown, and the
// display's consumer reads shown.
type swapChain struct {
	mu       sync.Mutex
	staging  *image.RGBA
	shown    *image.RGBA
	acquired bool
	closed   bool
	presents int64
}

func newSwapChain(width, height int) *swapChain {
	r := image.Rect(0, 0, width, height)
	return &swapChain{
		staging: image.NewRGBA(r),
		shown:   image.NewRGBA(r),
	}
}

func (sc *swapChain) acquire() (*image.RGBA, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		return nil, ErrDisplayClosed
	}
	if sc.acquired {
		return nil, errors.New("frame already acquired")
	}
	sc.acquired = true
	return sc.staging, nil
}

// present swaps staging and shown and runs onPresent, if any, on the new
// shown image before the chain can be closed.
func (sc *swapChain) present(onPresent func(*image.RGBA)) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		return ErrDisplayClosed
	}
	sc.staging, sc.shown = sc.shown, sc.staging
	sc.presents++
	if onPresent != nil {
		onPresent(sc.shown)
	}
	return nil
}

func (sc *swapChain) release() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.acquired = false
}

func (sc *swapChain) close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.closed = true
}

// withShown runs fn with the last presented image.
func (sc *swapChain) withShown(fn func(img *image.RGBA)) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	fn(sc.shown)
}

type swapFrame struct {
	chain     *swapChain
	target    *image.RGBA
	onPresent func(*image.RGBA)
}

func (f *swapFrame) Target() draw.Image { return f.target }

func (f *swapFrame) Present() error { return f.chain.present(f.onPresent) }

func (f *swapFrame) Release() { f.chain.release() }

// MemoryDisplay presents into memory. It backs headless runs and tests.
type MemoryDisplay struct {
	chain *swapChain

	mu   sync.RWMutex
	hook func(*image.RGBA)
}

// NewMemoryDisplay creates a headless display of the given size.
func NewMemoryDisplay(width, height int) *MemoryDisplay {
	return &MemoryDisplay{chain: newSwapChain(width, height)}
}

// SetPresentHook registers fn to observe every presented image. The image
// is only valid for the duration of the call.
func (d *MemoryDisplay) SetPresentHook(fn func(img *image.RGBA)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hook = fn
}

// Acquire implements Display.
func (d *MemoryDisplay) Acquire() (Frame, error) {
	target, err := d.chain.acquire()
	if err != nil {
		return nil, err
	}
	d.mu.RLock()
	hook := d.hook
	d.mu.RUnlock()
	return &swapFrame{chain: d.chain, target: target, onPresent: hook}, nil
}

// Close implements Display.
func (d *MemoryDisplay) Close() error {
	d.chain.close()
	return nil
}

// Snapshot returns a copy of the last presented image.
func (d *MemoryDisplay) Snapshot() *image.RGBA {
	var cp *image.RGBA
	d.chain.withShown(func(img *image.RGBA) {
		cp = image.NewRGBA(img.Rect)
		copy(cp.Pix, img.Pix)
	})
	return cp
}

// Presented returns the number of frames presented so far.
func (d *MemoryDisplay) Presented() int64 {
	d.chain.mu.Lock()
	defer d.chain.mu.Unlock()
	return d.chain.presents
}
