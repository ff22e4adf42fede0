package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Color scheme for pyruntime
var (
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)

	CheckMark = color.GreenString("✓")
	CrossMark = color.RedString("✗")
	Arrow     = color.CyanString("→")
)

// InitColors initializes color settings based on environment
func InitColors() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	if os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", CheckMark, Success.Sprintf(format, a...))
}

// PrintError prints an error message
func PrintError(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", CrossMark, Error.Sprintf(format, a...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "! %s\n", Warning.Sprintf(format, a...))
}

// PrintInfo prints an informational message
func PrintInfo(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", Arrow, Info.Sprintf(format, a...))
}

// PrintHeader prints a section header
func PrintHeader(text string) {
	fmt.Fprintln(os.Stdout)
	Bold.Fprintln(os.Stdout, text)
	Muted.Fprintln(os.Stdout, "────────────────────────────────────────")
}

// PrintSubheader prints a subsection header
func PrintSubheader(text string) {
	fmt.Fprintln(os.Stdout)
	Highlight.Fprintln(os.Stdout, text)
}

// PrintList prints items as an indented bullet list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("  • %s\n", item)
	}
}
