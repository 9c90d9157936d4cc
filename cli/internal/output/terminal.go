package output

import (
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

const defaultWidth = 80

type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of w, honouring $COLUMNS first
func TerminalWidth(w io.Writer) int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if width, err := strconv.Atoi(cols); err == nil && width > 0 {
			return width
		}
	}

	if f, ok := w.(fdWriter); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}

	return defaultWidth
}

// ClearScreen erases the visible screen and moves the cursor home
func ClearScreen(w io.Writer) error {
	_, err := io.WriteString(w, ansi.EraseEntireScreen+ansi.CursorHomePosition)
	return err
}
