// Package render implements the double-buffered drawing engine behind
// go-fungraphics: two CPU surfaces, a frame clock and a background presenter
// that composites the surfaces onto a display target at a regulated rate.
package render

import (
	"errors"
	"fmt"
	"image/color"
)

// Centered is the window offset sentinel that asks for the window to be
// centered on the screen.
const Centered = -1

// DefaultRefreshRate is used when the display refresh rate cannot be detected.
const DefaultRefreshRate = 50

// ErrInvalidSize is returned when a surface is configured with a
// non-positive width or height.
var ErrInvalidSize = errors.New("invalid surface size")

// Config holds the construction parameters of a drawing window.
type Config struct {
	// Width is the drawable width in pixels.
	Width int
	// Height is the drawable height in pixels.
	Height int
	// X is the horizontal window offset on screen, or Centered.
	X int
	// Y is the vertical window offset on screen, or Centered.
	Y int
	// Title is the window title.
	Title string
	// HighQuality enables anti-aliased shapes and text and smooth image
	// filtering. When false, coverage is thresholded for raw speed.
	HighQuality bool
	// CheckBounds reports out-of-frame drawing through the diagnostic hook.
	CheckBounds bool
	// ShowFPS draws the frame rate readout on every presented frame.
	ShowFPS bool
	// BackgroundColor is the initial color of the back surface.
	BackgroundColor color.RGBA
	// RefreshRate forces the presentation rate in Hz. Zero means detect
	// the display refresh rate, falling back to DefaultRefreshRate.
	RefreshRate int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Width:           640,
		Height:          480,
		X:               Centered,
		Y:               Centered,
		Title:           "FunGraphics",
		HighQuality:     true,
		CheckBounds:     true,
		ShowFPS:         false,
		BackgroundColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		RefreshRate:     0,
	}
}

// Validate checks if the Config has valid values.
func (c Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidSize, c.Width)
	}
	if c.Height <= 0 {
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidSize, c.Height)
	}
	if c.X < Centered || c.Y < Centered {
		return fmt.Errorf("window offset must be non-negative or Centered, got (%d, %d)", c.X, c.Y)
	}
	if c.RefreshRate < 0 {
		return fmt.Errorf("%w: refresh rate %d", ErrInvalidFrequency, c.RefreshRate)
	}
	return nil
}
