// Package config provides the configuration data structures of the
// fungraphics scene runner and the Lua parser that fills them.
package config

import (
	"fmt"
	"image/color"
	"strings"
)

// Config represents the complete scene runner configuration.
type Config struct {
	// Window contains the surface geometry and title.
	Window WindowConfig
	// Display contains rendering and presentation settings.
	Display DisplayConfig
	// Scene contains the Lua scene and its pacing.
	Scene SceneConfig
	// Lua contains the script sandbox limits.
	Lua LuaConfig
	// Fonts lists extra font files to register before the scene starts.
	Fonts []FontConfig
}

// WindowConfig holds the surface geometry.
type WindowConfig struct {
	// Width is the drawable width in pixels.
	Width int
	// Height is the drawable height in pixels.
	Height int
	// X is the horizontal window offset, or -1 to center.
	X int
	// Y is the vertical window offset, or -1 to center.
	Y int
	// Title is the window title.
	Title string
}

// DisplayConfig holds rendering and presentation settings.
type DisplayConfig struct {
	// Output selects where frames are presented.
	Output Output
	// HighQuality enables anti-aliasing.
	HighQuality bool
	// CheckBounds reports drawing outside the frame.
	CheckBounds bool
	// ShowFPS draws the frame rate readout.
	ShowFPS bool
	// RefreshRate forces the presentation rate in Hz; 0 detects it.
	RefreshRate int
	// Background is the backdrop color.
	Background color.RGBA
}

// SceneConfig holds the Lua scene settings.
type SceneConfig struct {
	// Script is the path of the scene file. Relative paths are resolved
	// against the configuration file's directory.
	Script string
	// LogicRate is the number of frame() calls per second.
	LogicRate int
	// Watch reloads the scene when its file changes.
	Watch bool
	// Frames stops the runner after that many logic ticks; 0 runs forever.
	Frames int
}

// LuaConfig holds the script sandbox limits.
type LuaConfig struct {
	// CPULimit is the instruction budget of one callback; 0 is unlimited.
	CPULimit uint64
	// MemoryLimit is the memory budget of one callback in bytes; 0 is unlimited.
	MemoryLimit uint64
}

// FontConfig registers a font file under a family name and style.
type FontConfig struct {
	Family string
	Style  string
	Path   string
}

// Output selects the presentation target.
type Output int

const (
	// OutputWindow presents into a desktop window.
	OutputWindow Output = iota
	// OutputTerminal presents into the terminal with half-block characters.
	OutputTerminal
	// OutputHeadless presents into memory.
	OutputHeadless
)

// String returns the string representation of the output.
func (o Output) String() string {
	switch o {
	case OutputWindow:
		return "window"
	case OutputTerminal:
		return "terminal"
	case OutputHeadless:
		return "headless"
	default:
		return "unknown"
	}
}

// ParseOutput parses an output name, case-insensitively.
func ParseOutput(s string) (Output, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "window", "":
		return OutputWindow, nil
	case "terminal", "tty":
		return OutputTerminal, nil
	case "headless", "none":
		return OutputHeadless, nil
	default:
		return OutputWindow, fmt.Errorf("unknown output: %s", s)
	}
}

// Validate checks if the Config has valid values.
// For warnings as well as errors, use NewValidator().Validate().
func (c *Config) Validate() error {
	return ValidateConfig(c)
}
