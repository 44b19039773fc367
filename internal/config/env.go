package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// It supports the following formats:
//   - ${VAR_NAME} - replaced with value of VAR_NAME
//   - ${VAR_NAME:-default} - replaced with VAR_NAME's value, or "default" if unset/empty
//   - $VAR_NAME - replaced with value of VAR_NAME (simple format)
//
// Unknown or unset variables without defaults are replaced with empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Check for ${VAR} or ${VAR:-default} format
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]

			// Check for default value syntax: VAR:-default
			if idx := strings.Index(inner, ":-"); idx >= 0 {
				varName := inner[:idx]
				defaultVal := inner[idx+2:]
				if val := os.Getenv(varName); val != "" {
					return val
				}
				return defaultVal
			}

			// Simple variable reference
			return os.Getenv(inner)
		}

		// Handle $VAR format (simple variable)
		if strings.HasPrefix(match, "$") {
			varName := match[1:]
			return os.Getenv(varName)
		}

		return match
	})
}

// ExpandEnvConfig expands environment variables in the path-like string
// values of cfg in place: the title, the scene script and font paths.
func ExpandEnvConfig(cfg *Config) {
	ExpandEnvConfigWithOptions(cfg)
}

// EnvConfigOption is a functional option for environment variable expansion.
type EnvConfigOption func(*envConfigOptions)

type envConfigOptions struct {
	expandTitle bool
	expandScene bool
	expandFonts bool
}

// defaultEnvConfigOptions returns the default options (all expansion enabled).
func defaultEnvConfigOptions() *envConfigOptions {
	return &envConfigOptions{
		expandTitle: true,
		expandScene: true,
		expandFonts: true,
	}
}

// WithExpandTitle controls whether the window title is expanded.
func WithExpandTitle(expand bool) EnvConfigOption {
	return func(o *envConfigOptions) {
		o.expandTitle = expand
	}
}

// WithExpandScene controls whether the scene script path is expanded.
func WithExpandScene(expand bool) EnvConfigOption {
	return func(o *envConfigOptions) {
		o.expandScene = expand
	}
}

// WithExpandFonts controls whether font paths are expanded.
func WithExpandFonts(expand bool) EnvConfigOption {
	return func(o *envConfigOptions) {
		o.expandFonts = expand
	}
}

// ExpandEnvConfigWithOptions expands environment variables with specific options.
func ExpandEnvConfigWithOptions(cfg *Config, opts ...EnvConfigOption) {
	if cfg == nil {
		return
	}

	options := defaultEnvConfigOptions()
	for _, opt := range opts {
		opt(options)
	}

	if options.expandTitle {
		cfg.Window.Title = ExpandEnv(cfg.Window.Title)
	}
	if options.expandScene {
		cfg.Scene.Script = ExpandEnv(cfg.Scene.Script)
	}
	if options.expandFonts {
		for i := range cfg.Fonts {
			cfg.Fonts[i].Path = ExpandEnv(cfg.Fonts[i].Path)
		}
	}
}
