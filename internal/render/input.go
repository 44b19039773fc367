package render

import "sync"

// KeyEvent describes a keyboard transition.
type KeyEvent struct {
	// Key is the platform-neutral key name, e.g. "A", "Space", "ArrowLeft".
	Key string
	// Rune is the typed character, or zero for non-printing keys.
	Rune rune
}

// MouseButton identifies a pointer button.
type MouseButton int

// Mouse buttons.
const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonMiddle
	MouseButtonRight
)

// String returns the button name.
func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "left"
	case MouseButtonMiddle:
		return "middle"
	case MouseButtonRight:
		return "right"
	default:
		return "none"
	}
}

// MouseEvent describes a pointer event in surface coordinates.
type MouseEvent struct {
	X, Y   int
	Button MouseButton
}

// KeyListener receives keyboard events.
type KeyListener interface {
	KeyPressed(KeyEvent)
	KeyReleased(KeyEvent)
}

// MouseListener receives pointer button events.
type MouseListener interface {
	MousePressed(MouseEvent)
	MouseReleased(MouseEvent)
}

// MouseMotionListener receives pointer movement events.
type MouseMotionListener interface {
	MouseMoved(MouseEvent)
	MouseDragged(MouseEvent)
}

// KeyFuncs adapts plain functions to KeyListener. Nil fields are skipped.
type KeyFuncs struct {
	OnPress   func(KeyEvent)
	OnRelease func(KeyEvent)
}

// KeyPressed implements KeyListener.
func (f KeyFuncs) KeyPressed(ev KeyEvent) {
	if f.OnPress != nil {
		f.OnPress(ev)
	}
}

// KeyReleased implements KeyListener.
func (f KeyFuncs) KeyReleased(ev KeyEvent) {
	if f.OnRelease != nil {
		f.OnRelease(ev)
	}
}

// MouseFuncs adapts plain functions to MouseListener and
// MouseMotionListener. Nil fields are skipped.
type MouseFuncs struct {
	OnPress   func(MouseEvent)
	OnRelease func(MouseEvent)
	OnMove    func(MouseEvent)
	OnDrag    func(MouseEvent)
}

// MousePressed implements MouseListener.
func (f MouseFuncs) MousePressed(ev MouseEvent) {
	if f.OnPress != nil {
		f.OnPress(ev)
	}
}

// MouseReleased implements MouseListener.
func (f MouseFuncs) MouseReleased(ev MouseEvent) {
	if f.OnRelease != nil {
		f.OnRelease(ev)
	}
}

// MouseMoved implements MouseMotionListener.
func (f MouseFuncs) MouseMoved(ev MouseEvent) {
	if f.OnMove != nil {
		f.OnMove(ev)
	}
}

// MouseDragged implements MouseMotionListener.
func (f MouseFuncs) MouseDragged(ev MouseEvent) {
	if f.OnDrag != nil {
		f.OnDrag(ev)
	}
}

// Input fans events out to registered listeners. Displays that own an event
// source feed it; listeners are called on the display's event goroutine.
type Input struct {
	mu     sync.RWMutex
	keys   []KeyListener
	mice   []MouseListener
	motion []MouseMotionListener
}

// NewInput creates an empty dispatcher.
func NewInput() *Input {
	return &Input{}
}

// AddKeyListener registers l for keyboard events.
func (in *Input) AddKeyListener(l KeyListener) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keys = append(in.keys, l)
}

// AddMouseListener registers l for button events.
func (in *Input) AddMouseListener(l MouseListener) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.mice = append(in.mice, l)
}

// AddMouseMotionListener registers l for movement events.
func (in *Input) AddMouseMotionListener(l MouseMotionListener) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.motion = append(in.motion, l)
}

// KeyPressed dispatches a key press.
func (in *Input) KeyPressed(ev KeyEvent) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	for _, l := range in.keys {
		l.KeyPressed(ev)
	}
}

// KeyReleased dispatches a key release.
func (in *Input) KeyReleased(ev KeyEvent) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	for _, l := range in.keys {
		l.KeyReleased(ev)
	}
}

// MousePressed dispatches a button press.
func (in *Input) MousePressed(ev MouseEvent) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	for _, l := range in.mice {
		l.MousePressed(ev)
	}
}

// MouseReleased dispatches a button release.
func (in *Input) MouseReleased(ev MouseEvent) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	for _, l := range in.mice {
		l.MouseReleased(ev)
	}
}

// MouseMoved dispatches pointer movement with no button held.
func (in *Input) MouseMoved(ev MouseEvent) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	for _, l := range in.motion {
		l.MouseMoved(ev)
	}
}

// MouseDragged dispatches pointer movement with a button held.
func (in *Input) MouseDragged(ev MouseEvent) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	for _, l := range in.motion {
		l.MouseDragged(ev)
	}
}

// KeyRune maps a key name to the character it types, or zero. Only letters,
// digits and space are mapped; shift selects upper case letters.
func KeyRune(name string, shift bool) rune {
	switch {
	case len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z':
		if shift {
			return rune(name[0])
		}
		return rune(name[0] - 'A' + 'a')
	case len(name) == 6 && name[:5] == "Digit" && name[5] >= '0' && name[5] <= '9':
		return rune(name[5])
	case name == "Space":
		return ' '
	default:
		return 0
	}
}
