package lua

import "errors"

var (
	// ErrNilRuntime is returned when a nil runtime is passed to a function that requires one.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrNilGraphics is returned when bindings are created without a drawing surface.
	ErrNilGraphics = errors.New("graphics cannot be nil")

	// ErrRuntimeClosed is returned by a Runtime after Close.
	ErrRuntimeClosed = errors.New("lua runtime is closed")

	// ErrLimitExceeded is returned when a script exceeds its CPU or memory budget.
	ErrLimitExceeded = errors.New("lua resource limit exceeded")

	// ErrNoFrameFunction is returned when a scene does not define frame().
	ErrNoFrameFunction = errors.New("scene does not define frame()")

	// ErrInvalidImage is returned when an argument is not an image loaded by fg_load_image.
	ErrInvalidImage = errors.New("expected image userdata")
)
