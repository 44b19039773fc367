//go:build noebiten

package render

import (
	"context"
	"errors"
)

// ErrWindowClosed is returned from Update when the window is closed
// programmatically or its context is cancelled.
var ErrWindowClosed = errors.New("window closed")

// errNoWindow is returned by NewWindow in noebiten builds.
var errNoWindow = errors.New("window support not compiled in (noebiten build)")

// Window is unavailable in noebiten builds; use a MemoryDisplay or a
// TerminalDisplay instead.
type Window struct{}

// NewWindow always fails in noebiten builds.
func NewWindow(config Config, input *Input) (*Window, error) {
	return nil, errNoWindow
}

// SetContext is a no-op.
func (w *Window) SetContext(ctx context.Context) {}

// Acquire implements Display.
func (w *Window) Acquire() (Frame, error) { return nil, ErrDisplayClosed }

// Close implements Display.
func (w *Window) Close() error { return nil }

// Run fails in noebiten builds.
func (w *Window) Run() error { return errNoWindow }

// IsRunning always reports false.
func (w *Window) IsRunning() bool { return false }
