// Package errors provides structured error types for jaroverlap.
// These errors carry context that can be formatted for human-readable CLI
// output or machine-readable JSON, and map to process exit codes.
//
//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

// Category represents the classification of an error.
type Category string

const (
	CategoryUsage   Category = "usage"
	CategoryOption  Category = "option"
	CategoryArchive Category = "archive"
	CategoryWorkdir Category = "workdir"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Usage errors (E1xx)
	CodeArgumentCount    Code = "E101"
	CodeUnsupportedInput Code = "E102"
	CodeInvalidOption    Code = "E103"

	// Archive and working directory errors (E2xx)
	CodeExtractFailed Code = "E201"
	CodeWorkdirFailed Code = "E202"
	CodeWorkdirLocked Code = "E203"
	CodeScanFailed    Code = "E204"
)

// Error is the base error type for jaroverlap.
type Error struct {
	// Category classifies the error type.
	Category Category `json:"category"`

	// Code is a machine-readable error code.
	Code Code `json:"code,omitempty"`

	// Message is a short description of the error.
	Message string `json:"message"`

	// Details contains additional context information.
	Details map[string]any `json:"details,omitempty"`

	// Hint provides actionable advice for the user.
	Hint string `json:"hint,omitempty"`

	// Usage is the command synopsis printed with usage errors.
	Usage string `json:"usage,omitempty"`

	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error.
// It matches if the target is an *Error with the same Code (if both have codes).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Code != "" && t.Code != "" {
		return e.Code == t.Code
	}
	return e.Category == t.Category && e.Message == t.Message
}

// WithHint sets the hint and returns the error for chaining.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithUsage sets the usage text and returns the error for chaining.
func (e *Error) WithUsage(usage string) *Error {
	e.Usage = usage
	return e
}

// WithDetail adds a detail and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given category and message.
func New(category Category, message string) *Error {
	return &Error{
		Category: category,
		Message:  message,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(category Category, message string, cause error) *Error {
	return &Error{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}
