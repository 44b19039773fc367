package fungraphics

import (
	"errors"
	"fmt"
	"time"
)

// ErrScreenshot is returned when the front surface cannot be written as PNG.
var ErrScreenshot = errors.New("screenshot failed")

// ErrClosed is returned by Start when the instance has been closed.
var ErrClosed = errors.New("fungraphics: closed")

// ErrorHandler receives runtime errors that are not returned to a caller,
// such as presentation failures. It is called from the presenter goroutine.
type ErrorHandler func(err error)

// ErrorCategory classifies a runtime error by the subsystem that raised it.
type ErrorCategory int

const (
	// ErrorCategoryUnknown is the default category for uncategorized errors.
	ErrorCategoryUnknown ErrorCategory = iota
	// ErrorCategoryConfig is for invalid options and configuration files.
	ErrorCategoryConfig
	// ErrorCategoryRender is for presentation and display failures.
	ErrorCategoryRender
	// ErrorCategoryAsset is for fonts and images that cannot be loaded.
	ErrorCategoryAsset
	// ErrorCategoryIO is for file writes such as screenshots.
	ErrorCategoryIO
	// ErrorCategoryScript is for Lua scene errors.
	ErrorCategoryScript

	numCategories
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryConfig:
		return "config"
	case ErrorCategoryRender:
		return "render"
	case ErrorCategoryAsset:
		return "asset"
	case ErrorCategoryIO:
		return "io"
	case ErrorCategoryScript:
		return "script"
	default:
		return "unknown"
	}
}

// ErrorSeverity indicates the severity level of an error.
type ErrorSeverity int

const (
	// SeverityInfo is for informational messages that don't require action.
	SeverityInfo ErrorSeverity = iota
	// SeverityWarning is for recoverable issues, such as one dropped frame.
	SeverityWarning
	// SeverityError is for errors that affect output but allow continued operation.
	SeverityError
	// SeverityCritical is for errors that stop presentation.
	SeverityCritical
)

// String returns a human-readable name for the severity level.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with a category, a severity and
// optional key-value context.
type CategorizedError struct {
	Err       error
	Category  ErrorCategory
	Severity  ErrorSeverity
	Timestamp time.Time
	Context   map[string]string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s/%s] (no error)", e.Severity, e.Category)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Severity, e.Category, e.Err.Error())
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorizedError creates a new CategorizedError timestamped now.
func NewCategorizedError(err error, category ErrorCategory, severity ErrorSeverity) *CategorizedError {
	return &CategorizedError{
		Err:       err,
		Category:  category,
		Severity:  severity,
		Timestamp: time.Now(),
	}
}

// WithContext adds a key-value pair to the error context and returns the error.
func (e *CategorizedError) WithContext(key, value string) *CategorizedError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// CategoryOf returns the category of the first CategorizedError in err's
// chain, or ErrorCategoryUnknown.
func CategoryOf(err error) ErrorCategory {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrorCategoryUnknown
}

// deliver calls h with err, swallowing a panic raised by the handler so
// that a faulty handler cannot stop the presenter.
func deliver(h ErrorHandler, err error) {
	if h == nil {
		return
	}
	defer func() { _ = recover() }()
	h(err)
}
