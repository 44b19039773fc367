package config

import "image/color"

// Default values for configuration options.
const (
	// DefaultWidth is the default surface width in pixels.
	DefaultWidth = 640
	// DefaultHeight is the default surface height in pixels.
	DefaultHeight = 480
	// DefaultTitle is the default window title.
	DefaultTitle = "FunGraphics"
	// DefaultLogicRate is the default number of frame() calls per second.
	DefaultLogicRate = 60
	// DefaultCPULimit is the default instruction budget of one Lua callback.
	DefaultCPULimit = 10_000_000
	// DefaultMemoryLimit is the default memory budget of one Lua callback.
	DefaultMemoryLimit = 50 * 1024 * 1024
	// centered is the window offset that centers the window.
	centered = -1
)

// DefaultBackground is the default backdrop color (white).
var DefaultBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			X:      centered,
			Y:      centered,
			Title:  DefaultTitle,
		},
		Display: DisplayConfig{
			Output:      OutputWindow,
			HighQuality: true,
			CheckBounds: true,
			Background:  DefaultBackground,
		},
		Scene: SceneConfig{
			LogicRate: DefaultLogicRate,
		},
		Lua: LuaConfig{
			CPULimit:    DefaultCPULimit,
			MemoryLimit: DefaultMemoryLimit,
		},
	}
}
