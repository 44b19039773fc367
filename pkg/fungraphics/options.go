package fungraphics

import (
	"image/color"

	"github.com/opd-ai/go-fungraphics/internal/render"
)

// Centered asks for the window to be centered on screen when used as
// Options.X or Options.Y.
const Centered = render.Centered

// Options configures a FunGraphics instance.
type Options struct {
	// Width and Height are the drawable size in pixels.
	Width  int
	Height int

	// X and Y are the window offset on screen, or Centered.
	X int
	Y int

	// Title is the window title.
	Title string

	// HighQuality enables anti-aliased shapes and text and smooth image
	// filtering.
	HighQuality bool

	// CheckBounds logs a warning for every drawing call that falls
	// entirely outside the frame.
	CheckBounds bool

	// ShowFPS draws the frame rate readout from the first frame on.
	ShowFPS bool

	// Background is the initial backdrop color. Nil means white.
	Background color.Color

	// RefreshRate forces the presentation rate in Hz.
	// Zero means detect the display rate, falling back to 50 Hz.
	RefreshRate int

	// Headless presents into memory instead of a window.
	// The last presented frame is available through PresentedFrame.
	Headless bool

	// Terminal presents into the controlling terminal with half-block
	// characters instead of a window.
	Terminal bool

	// Display overrides the presentation target. It takes precedence over
	// Headless and Terminal.
	Display Display

	// Logger receives diagnostics. If nil, NopLogger() is used.
	Logger Logger

	// Metrics receives operational counters. If nil, DefaultMetrics() is used.
	Metrics *Metrics

	// ErrorHandler receives presentation failures as *CategorizedError.
	// A panicking handler is ignored.
	ErrorHandler ErrorHandler
}

// DefaultOptions returns Options with sensible defaults: a centered,
// anti-aliased 640x480 window with bounds checking on.
func DefaultOptions() Options {
	return Options{
		Width:       640,
		Height:      480,
		X:           Centered,
		Y:           Centered,
		Title:       "FunGraphics",
		HighQuality: true,
		CheckBounds: true,
	}
}

// renderConfig translates the public options into the engine configuration.
func (o Options) renderConfig() render.Config {
	cfg := render.DefaultConfig()
	cfg.Width = o.Width
	cfg.Height = o.Height
	cfg.X = o.X
	cfg.Y = o.Y
	if o.Title != "" {
		cfg.Title = o.Title
	}
	cfg.HighQuality = o.HighQuality
	cfg.CheckBounds = o.CheckBounds
	cfg.ShowFPS = o.ShowFPS
	if o.Background != nil {
		cfg.BackgroundColor = color.RGBAModel.Convert(o.Background).(color.RGBA)
	}
	cfg.RefreshRate = o.RefreshRate
	return cfg
}
