//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors for CLI output.
type Formatter struct {
	NoColor bool
	Writer  io.Writer

	errorColor    *color.Color
	codeColor     *color.Color
	pathColor     *color.Color
	hintColor     *color.Color
	usageColor    *color.Color
	expectedColor *color.Color
	gotColor      *color.Color
	dimColor      *color.Color
}

// NewFormatter creates a new Formatter.
func NewFormatter(w io.Writer, noColor bool) *Formatter {
	if noColor {
		color.NoColor = true
	}

	return &Formatter{
		NoColor:       noColor,
		Writer:        w,
		errorColor:    color.New(color.FgRed, color.Bold),
		codeColor:     color.New(color.FgRed),
		pathColor:     color.New(color.FgCyan),
		hintColor:     color.New(color.FgGreen),
		usageColor:    color.New(color.FgBlue),
		expectedColor: color.New(color.FgYellow),
		gotColor:      color.New(color.FgRed),
		dimColor:      color.New(color.FgHiBlack),
	}
}

// Print writes the formatted error to the formatter's writer.
func (f *Formatter) Print(err error) {
	if err == nil || f.Writer == nil {
		return
	}
	_, _ = io.WriteString(f.Writer, f.Format(err))
}

// formatErrorHeader writes the error header with code.
// Format: "Error [E101]: message" or "Error: message" if no code.
func (f *Formatter) formatErrorHeader(sb *strings.Builder, code Code, message string) {
	sb.WriteString(f.errorColor.Sprint("Error"))
	if code != "" {
		sb.WriteString(" ")
		sb.WriteString(f.codeColor.Sprintf("[%s]", code))
	}
	sb.WriteString(f.errorColor.Sprint(": "))
	sb.WriteString(message)
	sb.WriteString("\n")
}

// Format formats an error for CLI display.
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	var usageErr *UsageError
	var optionErr *OptionError
	var archiveErr *ArchiveError
	var workdirErr *WorkdirError
	var baseErr *Error

	switch {
	case errors.As(err, &usageErr):
		f.formatUsageError(&sb, usageErr)
	case errors.As(err, &optionErr):
		f.formatOptionError(&sb, optionErr)
	case errors.As(err, &archiveErr):
		f.formatArchiveError(&sb, archiveErr)
	case errors.As(err, &workdirErr):
		f.formatWorkdirError(&sb, workdirErr)
	case errors.As(err, &baseErr):
		f.formatBaseError(&sb, baseErr)
	default:
		sb.WriteString(f.errorColor.Sprint("Error: "))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatJSON formats an error as JSON.
func (f *Formatter) FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return nil, nil
	}

	var usageErr *UsageError
	var optionErr *OptionError
	var archiveErr *ArchiveError
	var workdirErr *WorkdirError
	var baseErr *Error

	switch {
	case errors.As(err, &usageErr):
		return json.MarshalIndent(usageErr, "", "  ")
	case errors.As(err, &optionErr):
		return json.MarshalIndent(optionErr, "", "  ")
	case errors.As(err, &archiveErr):
		return json.MarshalIndent(archiveErr, "", "  ")
	case errors.As(err, &workdirErr):
		return json.MarshalIndent(workdirErr, "", "  ")
	case errors.As(err, &baseErr):
		return json.MarshalIndent(baseErr, "", "  ")
	default:
		return json.MarshalIndent(map[string]string{"error": err.Error()}, "", "  ")
	}
}

func (f *Formatter) formatUsageError(sb *strings.Builder, err *UsageError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)

	if err.Path != "" {
		sb.WriteString("\n  ")
		sb.WriteString(f.dimColor.Sprint("Path: "))
		sb.WriteString(f.pathColor.Sprint(err.Path))
		sb.WriteString("\n")
	}

	f.formatHintAndUsage(sb, &err.Base)
}

func (f *Formatter) formatOptionError(sb *strings.Builder, err *OptionError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	sb.WriteString("  ")
	sb.WriteString(f.dimColor.Sprint("Option:   "))
	sb.WriteString(f.pathColor.Sprint(err.Key))
	sb.WriteString("\n")

	if err.Expected != "" {
		sb.WriteString("  ")
		sb.WriteString(f.dimColor.Sprint("Expected: "))
		sb.WriteString(f.expectedColor.Sprint(err.Expected))
		sb.WriteString("\n")
	}

	sb.WriteString("  ")
	sb.WriteString(f.dimColor.Sprint("Got:      "))
	sb.WriteString(f.gotColor.Sprint(err.Got))
	sb.WriteString("\n")

	f.formatHintAndUsage(sb, &err.Base)
}

func (f *Formatter) formatArchiveError(sb *strings.Builder, err *ArchiveError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	sb.WriteString("  ")
	sb.WriteString(f.dimColor.Sprint("Path:   "))
	sb.WriteString(f.pathColor.Sprint(err.Path))
	sb.WriteString("\n")

	if err.Member != "" {
		sb.WriteString("  ")
		sb.WriteString(f.dimColor.Sprint("Member: "))
		sb.WriteString(err.Member)
		sb.WriteString("\n")
	}

	f.formatCause(sb, err.Base.Cause)
	f.formatHintAndUsage(sb, &err.Base)
}

func (f *Formatter) formatWorkdirError(sb *strings.Builder, err *WorkdirError) {
	f.formatErrorHeader(sb, err.Base.Code, err.Base.Message)
	sb.WriteString("\n")

	sb.WriteString("  ")
	sb.WriteString(f.dimColor.Sprint("Directory: "))
	sb.WriteString(f.pathColor.Sprint(err.Dir))
	sb.WriteString("\n")

	if err.LockFile != "" {
		sb.WriteString("  ")
		sb.WriteString(f.dimColor.Sprint("Lock file: "))
		sb.WriteString(f.pathColor.Sprint(err.LockFile))
		sb.WriteString("\n")
	}

	f.formatCause(sb, err.Base.Cause)
	f.formatHintAndUsage(sb, &err.Base)
}

func (f *Formatter) formatBaseError(sb *strings.Builder, err *Error) {
	f.formatErrorHeader(sb, err.Code, err.Message)
	f.formatCause(sb, err.Cause)
	f.formatHintAndUsage(sb, err)
}

func (f *Formatter) formatCause(sb *strings.Builder, cause error) {
	if cause == nil {
		return
	}
	sb.WriteString("\n  ")
	sb.WriteString(f.dimColor.Sprint("Cause: "))
	sb.WriteString(cause.Error())
	sb.WriteString("\n")
}

func (f *Formatter) formatHintAndUsage(sb *strings.Builder, err *Error) {
	if err.Hint != "" {
		sb.WriteString("\n")
		sb.WriteString(f.hintColor.Sprint("Hint: "))
		// Multi-line hints are indented under the label.
		lines := strings.Split(err.Hint, "\n")
		sb.WriteString(lines[0])
		sb.WriteString("\n")
		for _, line := range lines[1:] {
			sb.WriteString("      ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if err.Usage != "" {
		sb.WriteString("\n")
		sb.WriteString(f.usageColor.Sprint("Usage:"))
		sb.WriteString("\n")
		for line := range strings.SplitSeq(strings.TrimRight(err.Usage, "\n"), "\n") {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
}
