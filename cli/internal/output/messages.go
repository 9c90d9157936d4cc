package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

func writeStatus(w io.Writer, verb string, style lipgloss.Style, format string, args ...any) {
	padded := fmt.Sprintf("%12s", verb)
	fmt.Fprintf(w, "%s %s\n", style.Render(padded), fmt.Sprintf(format, args...))
}

// Status prints a right-aligned bold cyan verb followed by a message to stdout.
func Status(verb string, format string, args ...any) {
	writeStatus(os.Stdout, verb, stdoutStyles.title, format, args...)
}

// Warn prints a right-aligned yellow "warning" followed by a message to stderr.
func Warn(format string, args ...any) {
	writeStatus(os.Stderr, "warning", stderrStyles.warn.Bold(true), format, args...)
}

// Error prints a right-aligned bold red "error" followed by a message to stderr.
func Error(format string, args ...any) {
	writeStatus(os.Stderr, "error", stderrStyles.bad, format, args...)
}
