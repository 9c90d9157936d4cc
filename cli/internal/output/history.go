package output

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhaobenny/claude-token-counter/internal/model"
)

const (
	compactThreshold = 100 // Terminal width below which compact mode kicks in
	dateWidth        = 10

	highUsage     = 100_000
	elevatedUsage = 50_000
)

// TableOptions controls table display behavior
type TableOptions struct {
	ForceCompact bool
}

func shouldUseCompact(w io.Writer, opts TableOptions) bool {
	if opts.ForceCompact {
		return true
	}
	return TerminalWidth(w) < compactThreshold
}

// RenderHistory prints up to days buckets, newest first
func RenderHistory(w io.Writer, records []model.UsageRecord, days int) {
	st := newStyles(w)

	if len(records) == 0 {
		fmt.Fprintln(w, st.warn.Render("No usage data found for the specified period."))
		return
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.UsageRecord) int {
		return strings.Compare(b.Date(), a.Date())
	})
	if days > 0 && len(sorted) > days {
		sorted = sorted[:days]
	}

	line := strings.Repeat("─", dateWidth+2+14+2+14+2+14)
	fmt.Fprintf(w, "\n%s\n", st.title.Render(fmt.Sprintf("Usage History (Last %d days)", days)))
	fmt.Fprintf(w, "%s\n", st.heading.Render(fmt.Sprintf("%-*s  %14s  %14s  %14s",
		dateWidth, "Date", "Input Tokens", "Output Tokens", "Total")))
	fmt.Fprintln(w, st.rule.Render(line))

	var in, out uint64
	for _, r := range sorted {
		total := r.InputTokens() + r.OutputTokens()
		in += r.InputTokens()
		out += r.OutputTokens()

		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			st.label.Render(fmt.Sprintf("%-*s", dateWidth, r.Date())),
			st.good.Render(fmt.Sprintf("%14s", FormatNumber(r.InputTokens()))),
			st.warn.Render(fmt.Sprintf("%14s", FormatNumber(r.OutputTokens()))),
			st.dailyStyle(total).Render(fmt.Sprintf("%14s", FormatNumber(total))))
	}

	if len(sorted) > 1 {
		fmt.Fprintln(w, st.rule.Render(line))
		fmt.Fprintf(w, "%s  %14s  %14s  %s\n",
			st.heading.Render(fmt.Sprintf("%-*s", dateWidth, "Total")),
			FormatNumber(in), FormatNumber(out),
			st.total.Render(fmt.Sprintf("%14s", FormatNumber(in+out))))
	}
	fmt.Fprintln(w)
}

// RenderSnapshotHistory prints recorded local snapshots, one per row
func RenderSnapshotHistory(w io.Writer, snaps []model.Snapshot, opts TableOptions) {
	st := newStyles(w)

	if len(snaps) == 0 {
		fmt.Fprintln(w, st.warn.Render("No recorded snapshots found. Run `record` or `live --record` first."))
		return
	}

	compact := shouldUseCompact(w, opts)
	fmt.Fprintln(w)

	if compact {
		// Compact: Date, Input, Output, Cost
		line := strings.Repeat("─", dateWidth+2+12+2+12+2+10)
		fmt.Fprintln(w, st.heading.Render(fmt.Sprintf("%-*s  %12s  %12s  %10s",
			dateWidth, "Date", "Input", "Output", "Cost")))
		fmt.Fprintln(w, st.rule.Render(line))
		for _, s := range snaps {
			fmt.Fprintf(w, "%s  %12s  %12s  %s\n",
				st.label.Render(fmt.Sprintf("%-*s", dateWidth, s.TakenAt.Format("2006-01-02"))),
				FormatNumber(s.Usage.TotalInput),
				FormatNumber(s.Usage.TotalOutput),
				st.cost.Render(fmt.Sprintf("%10s", FormatCost(s.Cost))))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.muted.Render("(Compact mode - expand terminal for full view)"))
		return
	}

	// Full: Date, Input, Output, Cache Create, Cache Read, Total, Cost
	line := strings.Repeat("─", dateWidth+2+12+2+12+2+14+2+14+2+14+2+10)
	fmt.Fprintln(w, st.heading.Render(fmt.Sprintf("%-*s  %12s  %12s  %14s  %14s  %14s  %10s",
		dateWidth, "Date", "Input", "Output", "Cache Create", "Cache Read", "Total", "Cost")))
	fmt.Fprintln(w, st.rule.Render(line))
	for _, s := range snaps {
		total := s.Usage.Total()
		fmt.Fprintf(w, "%s  %12s  %12s  %14s  %14s  %s  %s\n",
			st.label.Render(fmt.Sprintf("%-*s", dateWidth, s.TakenAt.Format("2006-01-02"))),
			FormatNumber(s.Usage.TotalInput),
			FormatNumber(s.Usage.TotalOutput),
			FormatNumber(s.Usage.TotalCacheCreation),
			FormatNumber(s.Usage.TotalCacheRead),
			st.total.Render(fmt.Sprintf("%14s", FormatNumber(total))),
			st.cost.Render(fmt.Sprintf("%10s", FormatCost(s.Cost))))
	}
	fmt.Fprintln(w)
}

// dailyStyle highlights heavy days
func (s styles) dailyStyle(total uint64) lipgloss.Style {
	switch {
	case total > highUsage:
		return s.bad
	case total > elevatedUsage:
		return s.warn
	default:
		return s.value
	}
}
