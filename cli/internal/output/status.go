package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/zhaobenny/claude-token-counter/internal/model"
)

const progressBarWidth = 40

// RenderStatus prints the usage summary. A zero monthlyLimit omits the quota block.
func RenderStatus(w io.Writer, summary model.UsageSummary, monthlyLimit uint64) {
	st := newStyles(w)
	rule := st.rule.Render(strings.Repeat("═", ruleWidth))

	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, st.title.Render("  TOKEN USAGE SUMMARY"), rule)

	fmt.Fprintf(w, "\n%s\n", st.heading.Render("Token Counts:"))
	fmt.Fprintf(w, "  %s %s\n", st.label.Render("Input tokens: "), st.value.Render(FormatNumber(summary.TotalInputTokens)))
	fmt.Fprintf(w, "  %s %s\n", st.label.Render("Output tokens:"), st.value.Render(FormatNumber(summary.TotalOutputTokens)))
	fmt.Fprintf(w, "  %s %s\n", st.label.Bold(true).Render("Total tokens: "), st.total.Render(FormatNumber(summary.TotalTokens)))

	fmt.Fprintf(w, "\n%s\n", st.heading.Render("Usage Stats:"))
	fmt.Fprintf(w, "  %s %s\n", st.label.Render("Days with usage:"), st.value.Render(fmt.Sprint(summary.DaysWithUsage)))

	if monthlyLimit > 0 {
		percentage := summary.PercentageUsed(monthlyLimit)
		remaining := summary.Remaining(monthlyLimit)

		fmt.Fprintf(w, "\n%s\n", st.heading.Render("Monthly Quota:"))
		fmt.Fprintf(w, "  %s %s\n", st.label.Render("Limit:       "), st.value.Render(FormatNumber(monthlyLimit)))
		fmt.Fprintf(w, "  %s %s\n", st.label.Render("Used:        "), st.warn.Render(FormatNumber(summary.TotalTokens)))
		if remaining >= 0 {
			fmt.Fprintf(w, "  %s %s\n", st.label.Render("Remaining:   "), st.good.Render(FormatSigned(remaining)))
		} else {
			fmt.Fprintf(w, "  %s %s\n", st.label.Render("Overage:     "), st.bad.Render(FormatSigned(-remaining)))
		}
		usage := st.usageStyle(percentage)
		fmt.Fprintf(w, "  %s %s\n", st.label.Render("Usage:       "), usage.Render(FormatPercent(percentage)))
		fmt.Fprintf(w, "  %s\n", usage.Render(ProgressBar(percentage, progressBarWidth)))
	}

	fmt.Fprintf(w, "\n%s\n", rule)
}

// ProgressBar draws a bracketed bar of width cells filled to percentage
func ProgressBar(percentage float64, width int) string {
	filled := int(percentage / 100 * float64(width))
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
