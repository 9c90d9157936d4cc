package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhaobenny/claude-token-counter/internal/model"
)

const ruleWidth = 60

// LiveRenderer redraws the live usage report for every monitor tick
type LiveRenderer struct {
	Out      io.Writer
	Interval time.Duration
	// Clear erases the screen before each frame so the report redraws in place.
	Clear bool

	styles *styles
}

// NewLiveRenderer creates a renderer that clears the screen when out is a terminal
func NewLiveRenderer(out io.Writer, interval time.Duration) *LiveRenderer {
	return &LiveRenderer{Out: out, Interval: interval, Clear: IsTerminal(out)}
}

// HandleSnapshot writes one frame as a single write to limit flicker
func (r *LiveRenderer) HandleSnapshot(_ context.Context, snap model.Snapshot) error {
	if r.styles == nil {
		st := newStyles(r.Out)
		r.styles = &st
	}

	var b strings.Builder
	if r.Clear {
		if err := ClearScreen(&b); err != nil {
			return err
		}
	}
	renderLive(&b, *r.styles, snap, r.Interval)

	_, err := io.WriteString(r.Out, b.String())
	return err
}

// RenderLive writes a single live report frame to w
func RenderLive(w io.Writer, snap model.Snapshot, interval time.Duration) error {
	var b strings.Builder
	renderLive(&b, newStyles(w), snap, interval)
	_, err := io.WriteString(w, b.String())
	return err
}

func renderLive(b *strings.Builder, st styles, snap model.Snapshot, interval time.Duration) {
	usage := snap.Usage
	rule := st.rule.Render(strings.Repeat("═", ruleWidth))

	row := func(label, value string, style lipgloss.Style) {
		fmt.Fprintf(b, "  %s %s\n", st.label.Render(fmt.Sprintf("%-16s", label)), style.Render(fmt.Sprintf("%16s", value)))
	}

	fmt.Fprintf(b, "%s\n%s\n%s\n\n", rule, st.title.Render("  CLAUDE CODE LIVE USAGE"), rule)

	fmt.Fprintln(b, st.heading.Render("Token Counts:"))
	row("Input:", FormatNumber(usage.TotalInput), st.value)
	row("Output:", FormatNumber(usage.TotalOutput), st.value)
	row("Cache creation:", FormatNumber(usage.TotalCacheCreation), st.value)
	row("Cache read:", FormatNumber(usage.TotalCacheRead), st.value)
	row("Total:", FormatNumber(usage.Total()), st.total)

	fmt.Fprintf(b, "\n%s\n", st.heading.Render("Activity:"))
	row("Messages:", FormatNumber(usage.MessageCount), st.value)
	row("Log files:", FormatNumber(uint64(snap.Files)), st.value)
	row("Estimated cost:", FormatCost(snap.Cost), st.cost)

	fmt.Fprintf(b, "\n%s\n", rule)
	footer := fmt.Sprintf("Refreshing every %s · updated %s · press Ctrl+C to exit",
		interval, snap.TakenAt.Format("15:04:05"))
	fmt.Fprintln(b, st.muted.Render(footer))

	if snap.SkippedLines > 0 || snap.FailedFiles > 0 {
		note := fmt.Sprintf("Skipped %s malformed lines, %s unreadable files",
			FormatNumber(uint64(snap.SkippedLines)), FormatNumber(uint64(snap.FailedFiles)))
		fmt.Fprintln(b, st.warn.Render(note))
	}
}
