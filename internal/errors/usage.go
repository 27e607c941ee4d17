//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import "fmt"

// UsageError reports a command line that cannot be run: a wrong number of
// positional arguments or an input that is neither a directory nor a
// supported archive.
type UsageError struct {
	Base Error `json:"error"`

	// Args are the positional arguments that were given.
	Args []string `json:"args,omitempty"`

	// Path is the rejected input path (if applicable).
	Path string `json:"path,omitempty"`
}

// NewArgumentCountError creates a UsageError for a wrong argument count.
func NewArgumentCountError(args []string, usage string) *UsageError {
	return &UsageError{
		Base: Error{
			Category: CategoryUsage,
			Code:     CodeArgumentCount,
			Message:  fmt.Sprintf("expected 1 or 2 arguments, got %d", len(args)),
			Usage:    usage,
		},
		Args: args,
	}
}

// NewUnsupportedInputError creates a UsageError for an input that cannot be
// scanned.
func NewUnsupportedInputError(path string) *UsageError {
	return &UsageError{
		Base: Error{
			Category: CategoryUsage,
			Code:     CodeUnsupportedInput,
			Message:  "can only scan wars, distribution archives and jar directories",
			Hint:     "Pass a .war file, a .zip/.tar.gz/.tar.xz distribution or a directory containing jars.",
		},
		Path: path,
	}
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *UsageError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *UsageError) Is(target error) bool {
	t, ok := target.(*UsageError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}

// OptionError reports an option value outside its accepted range.
type OptionError struct {
	Base Error `json:"error"`

	// Key is the configuration key (e.g. "output").
	Key string `json:"key"`

	// Expected describes the accepted values.
	Expected string `json:"expected,omitempty"`

	// Got is the rejected value.
	Got string `json:"got,omitempty"`
}

// NewOptionError creates an OptionError.
func NewOptionError(key, expected, got string) *OptionError {
	return &OptionError{
		Base: Error{
			Category: CategoryOption,
			Code:     CodeInvalidOption,
			Message:  fmt.Sprintf("invalid value for option %s", key),
		},
		Key:      key,
		Expected: expected,
		Got:      got,
	}
}

// Error implements the error interface.
func (e *OptionError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *OptionError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *OptionError) Is(target error) bool {
	t, ok := target.(*OptionError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
