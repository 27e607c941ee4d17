package ui

import (
	"github.com/fatih/color"
)

// Style holds common output styling for CLI commands.
type Style struct {
	SuccessMark string
	WarnMark    string
	Header      *color.Color
	Step        *color.Color
	Warning     *color.Color
}

// NewStyle creates a new Style with standard colors.
func NewStyle() *Style {
	return &Style{
		SuccessMark: color.New(color.FgGreen).Sprint("✓"),
		WarnMark:    color.New(color.FgYellow).Sprint("⚠"),
		Header:      color.New(color.FgCyan, color.Bold),
		Step:        color.New(color.FgYellow),
		Warning:     color.New(color.FgYellow, color.Bold),
	}
}
