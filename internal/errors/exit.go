//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import "errors"

const (
	ExitOK      = 0
	ExitFailure = 1
	// ExitUsage is -1 truncated to an 8-bit process status.
	ExitUsage = 255
)

// ExitCode maps an error returned by the CLI to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usageErr *UsageError
	var optionErr *OptionError
	var baseErr *Error
	switch {
	case errors.As(err, &usageErr), errors.As(err, &optionErr):
		return ExitUsage
	case errors.As(err, &baseErr) && baseErr.Category == CategoryUsage:
		return ExitUsage
	default:
		return ExitFailure
	}
}
