package fungraphics

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     string
	}{
		{ErrorCategoryUnknown, "unknown"},
		{ErrorCategoryConfig, "config"},
		{ErrorCategoryRender, "render"},
		{ErrorCategoryAsset, "asset"},
		{ErrorCategoryIO, "io"},
		{ErrorCategoryScript, "script"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.want {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestErrorSeverity_String(t *testing.T) {
	tests := []struct {
		severity ErrorSeverity
		want     string
	}{
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{ErrorSeverity(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("ErrorSeverity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestCategorizedError(t *testing.T) {
	base := errors.New("device lost")
	err := NewCategorizedError(base, ErrorCategoryRender, SeverityWarning).WithContext("display", "window")

	if got := err.Error(); got != "[warning/render] device lost" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, base) {
		t.Error("errors.Is should see the wrapped error")
	}
	if err.Context["display"] != "window" {
		t.Errorf("Context = %v", err.Context)
	}
	if err.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}

	empty := &CategorizedError{Category: ErrorCategoryIO, Severity: SeverityError}
	if !strings.Contains(empty.Error(), "no error") {
		t.Errorf("nil Err message = %q", empty.Error())
	}
}

func TestCategoryOf(t *testing.T) {
	ce := NewCategorizedError(errors.New("bad script"), ErrorCategoryScript, SeverityError)
	wrapped := fmt.Errorf("frame 12: %w", ce)

	if CategoryOf(wrapped) != ErrorCategoryScript {
		t.Errorf("CategoryOf(wrapped) = %v, want script", CategoryOf(wrapped))
	}
	if CategoryOf(errors.New("plain")) != ErrorCategoryUnknown {
		t.Error("plain errors should be unknown")
	}
	if CategoryOf(nil) != ErrorCategoryUnknown {
		t.Error("nil should be unknown")
	}
}

func TestDeliver(t *testing.T) {
	deliver(nil, errors.New("no handler"))

	var got error
	deliver(func(err error) { got = err }, ErrScreenshot)
	if got != ErrScreenshot {
		t.Errorf("handler received %v", got)
	}

	deliver(func(error) { panic("boom") }, ErrScreenshot)
}
