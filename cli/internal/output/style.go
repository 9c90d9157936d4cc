package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorCyan   = lipgloss.Color("#00d4ff")
	ColorBlue   = lipgloss.Color("#3b82f6")
	ColorWhite  = lipgloss.Color("#f8fafc")
	ColorYellow = lipgloss.Color("#facc15")
	ColorGreen  = lipgloss.Color("#22c55e")
	ColorOrange = lipgloss.Color("#f97316")
	ColorRed    = lipgloss.Color("#ef4444")
	ColorMuted  = lipgloss.Color("#6b7280")
)

// styles are bound to a renderer so colour detection follows the target writer.
type styles struct {
	rule    lipgloss.Style
	title   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	total   lipgloss.Style
	cost    lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		rule:    r.NewStyle().Foreground(ColorBlue),
		title:   r.NewStyle().Bold(true).Foreground(ColorCyan),
		heading: r.NewStyle().Bold(true).Foreground(ColorWhite),
		label:   r.NewStyle().Foreground(ColorCyan),
		value:   r.NewStyle().Foreground(ColorWhite),
		total:   r.NewStyle().Bold(true).Foreground(ColorYellow),
		cost:    r.NewStyle().Bold(true).Foreground(ColorGreen),
		muted:   r.NewStyle().Foreground(ColorMuted),
		good:    r.NewStyle().Foreground(ColorGreen),
		warn:    r.NewStyle().Foreground(ColorYellow),
		bad:     r.NewStyle().Bold(true).Foreground(ColorRed),
	}
}

// usageStyle picks a colour for a share of quota used
func (s styles) usageStyle(percentage float64) lipgloss.Style {
	switch {
	case percentage < 50:
		return s.good
	case percentage < 80:
		return s.warn
	case percentage < 100:
		return s.warn.Foreground(ColorOrange).Bold(true)
	default:
		return s.bad
	}
}

var (
	stdoutStyles = newStyles(os.Stdout)
	stderrStyles = newStyles(os.Stderr)
)
