//go:build !noebiten

package render

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ErrWindowClosed is returned from Update when the window is closed
// programmatically or its context is cancelled.
var ErrWindowClosed = errors.New("window closed")

var windowMouseButtons = [...]struct {
	ebiten ebiten.MouseButton
	button MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
	{ebiten.MouseButtonRight, MouseButtonRight},
}

// Window is an ebiten-backed Display. The presenter writes frames into it
// from its own goroutine; the ebiten loop uploads the last presented frame
// every Draw and turns input state into listener callbacks every Update.
type Window struct {
	config Config
	chain  *swapChain
	input  *Input
	image  *ebiten.Image

	mu      sync.RWMutex
	ctx     context.Context
	running bool
	cursorX int
	cursorY int
}

// NewWindow creates a window display. Events are delivered to input, which
// may be nil.
func NewWindow(config Config, input *Input) (*Window, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if input == nil {
		input = NewInput()
	}
	return &Window{
		config: config,
		chain:  newSwapChain(config.Width, config.Height),
		input:  input,
	}, nil
}

// SetContext sets a context for the event loop. When the context is
// cancelled, the window closes.
func (w *Window) SetContext(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctx = ctx
}

// Acquire implements Display.
func (w *Window) Acquire() (Frame, error) {
	target, err := w.chain.acquire()
	if err != nil {
		return nil, err
	}
	return &swapFrame{chain: w.chain, target: target}, nil
}

// Close implements Display. The event loop exits on its next Update.
func (w *Window) Close() error {
	w.chain.close()
	return nil
}

// Update implements ebiten.Game.Update.
func (w *Window) Update() error {
	w.mu.RLock()
	ctx := w.ctx
	w.mu.RUnlock()

	if ctx != nil {
		select {
		case <-ctx.Done():
			return ErrWindowClosed
		default:
		}
	}
	if w.isClosed() {
		return ErrWindowClosed
	}

	w.pollKeys()
	w.pollMouse()
	return nil
}

func (w *Window) isClosed() bool {
	w.chain.mu.Lock()
	defer w.chain.mu.Unlock()
	return w.chain.closed
}

func (w *Window) pollKeys() {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		name := k.String()
		w.input.KeyPressed(KeyEvent{Key: name, Rune: KeyRune(name, shift)})
	}
	for _, k := range inpututil.AppendJustReleasedKeys(nil) {
		name := k.String()
		w.input.KeyReleased(KeyEvent{Key: name, Rune: KeyRune(name, shift)})
	}
}

func (w *Window) pollMouse() {
	x, y := ebiten.CursorPosition()
	held := MouseButtonNone
	for _, b := range windowMouseButtons {
		ev := MouseEvent{X: x, Y: y, Button: b.button}
		if inpututil.IsMouseButtonJustPressed(b.ebiten) {
			w.input.MousePressed(ev)
		}
		if inpututil.IsMouseButtonJustReleased(b.ebiten) {
			w.input.MouseReleased(ev)
		}
		if held == MouseButtonNone && ebiten.IsMouseButtonPressed(b.ebiten) {
			held = b.button
		}
	}

	if x == w.cursorX && y == w.cursorY {
		return
	}
	w.cursorX, w.cursorY = x, y
	ev := MouseEvent{X: x, Y: y, Button: held}
	if held != MouseButtonNone {
		w.input.MouseDragged(ev)
	} else {
		w.input.MouseMoved(ev)
	}
}

// Draw implements ebiten.Game.Draw. It uploads the last presented frame.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(w.config.Width, w.config.Height)
	}
	w.chain.withShown(func(img *image.RGBA) {
		w.image.WritePixels(img.Pix)
	})
	screen.DrawImage(w.image, nil)
}

// Layout implements ebiten.Game.Layout.
// It returns the fixed surface size.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.config.Width, w.config.Height
}

// Run opens the window and runs the event loop. It must be called from the
// main goroutine and blocks until the window is closed, after which the
// display reports ErrDisplayClosed to the presenter.
func (w *Window) Run() error {
	ebiten.SetWindowSize(w.config.Width, w.config.Height)
	ebiten.SetWindowTitle(w.config.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	if w.config.X != Centered || w.config.Y != Centered {
		x, y := ebiten.WindowPosition()
		if w.config.X != Centered {
			x = w.config.X
		}
		if w.config.Y != Centered {
			y = w.config.Y
		}
		ebiten.SetWindowPosition(x, y)
	}

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	err := ebiten.RunGame(w)

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	w.chain.close()

	if errors.Is(err, ErrWindowClosed) {
		return nil
	}
	return err
}

// IsRunning returns whether the event loop is currently running.
func (w *Window) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
