package config

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-fungraphics/internal/render"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues such as unusually large surfaces.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Merge combines another ValidationResult into this one.
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	vr.Errors = append(vr.Errors, other.Errors...)
	vr.Warnings = append(vr.Warnings, other.Warnings...)
}

// Limits above which a value is reported as a warning.
const (
	maxDimension   = 10000
	maxRefreshRate = 1000
	maxLogicRate   = 1000
)

// Validator provides comprehensive configuration validation.
type Validator struct {
	// strictMode turns warnings into errors.
	strictMode bool
}

// NewValidator creates a new Validator with default settings.
func NewValidator() *Validator {
	return &Validator{}
}

// WithStrictMode enables strict validation where warnings are errors.
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strictMode = strict
	return v
}

// Validate performs comprehensive validation of a Config.
func (v *Validator) Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	v.validateWindow(&cfg.Window, result)
	v.validateDisplay(&cfg.Display, result)
	v.validateScene(&cfg.Scene, result)
	v.validateFonts(cfg.Fonts, result)

	return result
}

func (v *Validator) warn(result *ValidationResult, field, message string) {
	if v.strictMode {
		result.AddError(field, message)
		return
	}
	result.AddWarning(field, message)
}

func (v *Validator) validateWindow(wc *WindowConfig, result *ValidationResult) {
	if wc.Width <= 0 {
		result.AddError("window.width", fmt.Sprintf("must be positive, got %d", wc.Width))
	}
	if wc.Height <= 0 {
		result.AddError("window.height", fmt.Sprintf("must be positive, got %d", wc.Height))
	}
	if wc.Width > maxDimension {
		v.warn(result, "window.width", fmt.Sprintf("unusually large value %d", wc.Width))
	}
	if wc.Height > maxDimension {
		v.warn(result, "window.height", fmt.Sprintf("unusually large value %d", wc.Height))
	}

	if wc.X < centered {
		result.AddError("window.x", fmt.Sprintf("must be -1 (centered) or non-negative, got %d", wc.X))
	}
	if wc.Y < centered {
		result.AddError("window.y", fmt.Sprintf("must be -1 (centered) or non-negative, got %d", wc.Y))
	}
}

func (v *Validator) validateDisplay(dc *DisplayConfig, result *ValidationResult) {
	if dc.Output > OutputHeadless || dc.Output < OutputWindow {
		result.AddError("display.output", fmt.Sprintf("unknown output: %d", dc.Output))
	}
	if dc.RefreshRate < 0 {
		result.AddError("display.refresh_rate", fmt.Sprintf("must be non-negative, got %d", dc.RefreshRate))
	}
	if dc.RefreshRate > maxRefreshRate {
		v.warn(result, "display.refresh_rate", fmt.Sprintf("very fast rate %d Hz", dc.RefreshRate))
	}
	if dc.Background.A == 0 {
		v.warn(result, "display.background", "fully transparent background")
	}
}

func (v *Validator) validateScene(sc *SceneConfig, result *ValidationResult) {
	if sc.LogicRate <= 0 {
		result.AddError("scene.logic_hz", fmt.Sprintf("must be positive, got %d", sc.LogicRate))
	}
	if sc.LogicRate > maxLogicRate {
		v.warn(result, "scene.logic_hz", fmt.Sprintf("very fast rate %d Hz may cause high CPU usage", sc.LogicRate))
	}
	if sc.Frames < 0 {
		result.AddError("scene.frames", fmt.Sprintf("must be non-negative, got %d", sc.Frames))
	}
	if sc.Watch && sc.Script == "" {
		v.warn(result, "scene.watch", "nothing to watch without a scene")
	}
}

func (v *Validator) validateFonts(fonts []FontConfig, result *ValidationResult) {
	for i, fc := range fonts {
		field := fmt.Sprintf("fonts[%d]", i+1)
		if fc.Path == "" {
			result.AddError(field+".path", "must not be empty")
		}
		if fc.Family == "" {
			result.AddError(field+".family", "must not be empty")
		}
		if _, err := render.ParseFontStyle(fc.Style); err != nil {
			result.AddError(field+".style", err.Error())
		}
	}
}

// ValidateConfig validates cfg with a default Validator and returns the
// combined error, or nil.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	return NewValidator().Validate(cfg).Error()
}
