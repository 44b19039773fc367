package render

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// upperHalfBlock paints the top pixel of a cell as foreground and the
// bottom pixel as background, giving two pixel rows per text row.
const upperHalfBlock = '▀'

// TerminalDisplay presents frames into a terminal with tcell, downsampled
// to fit the screen. Keyboard and mouse events from the terminal are fed to
// the input dispatcher; Escape or Ctrl-C closes the display.
type TerminalDisplay struct {
	screen tcell.Screen
	chain  *swapChain
	input  *Input
	width  int
	height int

	buttons   tcell.ButtonMask
	closeOnce sync.Once
	done      chan struct{}
}

// NewTerminalDisplay opens the controlling terminal.
func NewTerminalDisplay(width, height int, input *Input) (*TerminalDisplay, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return NewTerminalDisplayWithScreen(screen, width, height, input)
}

// NewTerminalDisplayWithScreen presents into an uninitialized tcell screen,
// such as a simulation screen in tests.
func NewTerminalDisplayWithScreen(screen tcell.Screen, width, height int, input *Input) (*TerminalDisplay, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	screen.HideCursor()
	screen.EnableMouse()
	screen.Clear()

	if input == nil {
		input = NewInput()
	}
	td := &TerminalDisplay{
		screen: screen,
		chain:  newSwapChain(width, height),
		input:  input,
		width:  width,
		height: height,
		done:   make(chan struct{}),
	}
	go td.pollEvents()
	return td, nil
}

// Acquire implements Display.
func (td *TerminalDisplay) Acquire() (Frame, error) {
	target, err := td.chain.acquire()
	if err != nil {
		return nil, err
	}
	return &swapFrame{chain: td.chain, target: target, onPresent: td.paint}, nil
}

// Close implements Display. It restores the terminal.
func (td *TerminalDisplay) Close() error {
	td.closeOnce.Do(func() {
		td.chain.close()
		td.screen.Fini()
	})
	return nil
}

// Done is closed once the event goroutine has stopped, which happens after
// Close or when the user quits from the keyboard.
func (td *TerminalDisplay) Done() <-chan struct{} { return td.done }

// grid returns the number of cells used, never more than one per pixel
// column and one per two pixel rows.
func (td *TerminalDisplay) grid() (cols, rows int) {
	cols, rows = td.screen.Size()
	if cols > td.width {
		cols = td.width
	}
	if rows*2 > td.height {
		rows = (td.height + 1) / 2
	}
	return cols, rows
}

func (td *TerminalDisplay) paint(img *image.RGBA) {
	cols, rows := td.grid()
	if cols <= 0 || rows <= 0 {
		return
	}
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			x := cx * td.width / cols
			top := img.RGBAAt(x, (2*cy)*td.height/(2*rows))
			bottom := img.RGBAAt(x, (2*cy+1)*td.height/(2*rows))
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			td.screen.SetContent(cx, cy, upperHalfBlock, nil, style)
		}
	}
	td.screen.Show()
}

// toSurface maps a cell position to the surface pixel it covers.
func (td *TerminalDisplay) toSurface(cx, cy int) (int, int) {
	cols, rows := td.grid()
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	return cx * td.width / cols, (2 * cy) * td.height / (2 * rows)
}

func (td *TerminalDisplay) pollEvents() {
	defer close(td.done)
	for {
		ev := td.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				td.Close()
				continue
			}
			key := terminalKeyEvent(ev)
			// Terminals report presses only; synthesize the release.
			td.input.KeyPressed(key)
			td.input.KeyReleased(key)
		case *tcell.EventMouse:
			td.dispatchMouse(ev)
		case *tcell.EventResize:
			td.screen.Sync()
		}
	}
}

func (td *TerminalDisplay) dispatchMouse(ev *tcell.EventMouse) {
	cx, cy := ev.Position()
	x, y := td.toSurface(cx, cy)
	buttons := ev.Buttons() & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	prev := td.buttons
	td.buttons = buttons

	for _, b := range []struct {
		mask   tcell.ButtonMask
		button MouseButton
	}{
		{tcell.Button1, MouseButtonLeft},
		{tcell.Button3, MouseButtonMiddle},
		{tcell.Button2, MouseButtonRight},
	} {
		me := MouseEvent{X: x, Y: y, Button: b.button}
		switch {
		case buttons&b.mask != 0 && prev&b.mask == 0:
			td.input.MousePressed(me)
		case buttons&b.mask == 0 && prev&b.mask != 0:
			td.input.MouseReleased(me)
		}
	}

	switch {
	case buttons == 0 && prev == 0:
		td.input.MouseMoved(MouseEvent{X: x, Y: y})
	case buttons != 0 && buttons == prev:
		td.input.MouseDragged(MouseEvent{X: x, Y: y, Button: terminalButton(buttons)})
	}
}

func terminalButton(mask tcell.ButtonMask) MouseButton {
	switch {
	case mask&tcell.Button1 != 0:
		return MouseButtonLeft
	case mask&tcell.Button2 != 0:
		return MouseButtonRight
	case mask&tcell.Button3 != 0:
		return MouseButtonMiddle
	default:
		return MouseButtonNone
	}
}

// terminalKeyEvent converts a tcell key to the key names used by windows,
// so listeners behave the same on both displays.
func terminalKeyEvent(ev *tcell.EventKey) KeyEvent {
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return KeyEvent{Key: strings.ToUpper(string(r)), Rune: r}
		case r >= '0' && r <= '9':
			return KeyEvent{Key: "Digit" + string(r), Rune: r}
		case r == ' ':
			return KeyEvent{Key: "Space", Rune: r}
		default:
			return KeyEvent{Key: string(r), Rune: r}
		}
	}
	switch ev.Key() {
	case tcell.KeyUp:
		return KeyEvent{Key: "ArrowUp"}
	case tcell.KeyDown:
		return KeyEvent{Key: "ArrowDown"}
	case tcell.KeyLeft:
		return KeyEvent{Key: "ArrowLeft"}
	case tcell.KeyRight:
		return KeyEvent{Key: "ArrowRight"}
	case tcell.KeyEnter:
		return KeyEvent{Key: "Enter"}
	case tcell.KeyTab:
		return KeyEvent{Key: "Tab"}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyEvent{Key: "Backspace"}
	default:
		return KeyEvent{Key: ev.Name()}
	}
}
