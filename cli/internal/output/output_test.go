package output

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhaobenny/claude-token-counter/internal/model"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "18,446,744,073,709,551,615", FormatNumber(math.MaxUint64))
}

func TestFormatSigned(t *testing.T) {
	assert.Equal(t, "-12,345", FormatSigned(-12345))
	assert.Equal(t, "12,345", FormatSigned(12345))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCost(0))
	assert.Equal(t, "$0.02", FormatCost(0.0199))
	assert.Equal(t, "$1,234.56", FormatCost(1234.56))
	assert.Equal(t, "$18.00", FormatCost(18))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "42.5%", FormatPercent(42.5))
	assert.Equal(t, "0.0%", FormatPercent(0))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "["+strings.Repeat("░", 10)+"]", ProgressBar(0, 10))
	assert.Equal(t, "["+strings.Repeat("█", 5)+strings.Repeat("░", 5)+"]", ProgressBar(50, 10))
	assert.Equal(t, "["+strings.Repeat("█", 10)+"]", ProgressBar(250, 10))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"total": 3}))
	assert.Equal(t, "{\n  \"total\": 3\n}\n", buf.String())
}

func liveSnapshot() model.Snapshot {
	return model.Snapshot{
		Tick:    1,
		TakenAt: time.Date(2026, 3, 4, 12, 30, 45, 0, time.UTC),
		Usage: model.AggregatedUsage{
			TotalInput:         1500,
			TotalOutput:        700,
			TotalCacheCreation: 300,
			TotalCacheRead:     2000,
			MessageCount:       3,
		},
		Cost:  0.021,
		Files: 2,
	}
}

func TestRenderLive(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderLive(&buf, liveSnapshot(), 5*time.Second))
	out := buf.String()

	assert.Contains(t, out, "CLAUDE CODE LIVE USAGE")
	for _, want := range []string{"1,500", "700", "300", "2,000", "4,500", "$0.02"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "Messages:")
	assert.Contains(t, out, "Refreshing every 5s")
	assert.Contains(t, out, "updated 12:30:45")
	assert.NotContains(t, out, "Skipped")
}

func TestRenderLiveReportsSkippedInput(t *testing.T) {
	snap := liveSnapshot()
	snap.SkippedLines = 4
	snap.FailedFiles = 1

	var buf bytes.Buffer
	require.NoError(t, RenderLive(&buf, snap, time.Second))
	assert.Contains(t, buf.String(), "Skipped 4 malformed lines, 1 unreadable files")
}

func TestLiveRendererClearsScreen(t *testing.T) {
	var buf bytes.Buffer
	r := &LiveRenderer{Out: &buf, Interval: time.Second, Clear: true}

	require.NoError(t, r.HandleSnapshot(context.Background(), liveSnapshot()))
	assert.True(t, strings.HasPrefix(buf.String(), "\x1b[2J\x1b[H"))

	buf.Reset()
	r.Clear = false
	require.NoError(t, r.HandleSnapshot(context.Background(), liveSnapshot()))
	assert.False(t, strings.HasPrefix(buf.String(), "\x1b["))
	assert.Contains(t, buf.String(), "4,500")
}

func TestNewLiveRendererDoesNotClearNonTerminal(t *testing.T) {
	r := NewLiveRenderer(&bytes.Buffer{}, time.Second)
	assert.False(t, r.Clear)
}

func TestRenderStatus(t *testing.T) {
	summary := model.UsageSummary{
		TotalInputTokens:  60_000,
		TotalOutputTokens: 15_000,
		TotalTokens:       75_000,
		DaysWithUsage:     2,
	}

	t.Run("without limit", func(t *testing.T) {
		var buf bytes.Buffer
		RenderStatus(&buf, summary, 0)
		assert.Contains(t, buf.String(), "75,000")
		assert.NotContains(t, buf.String(), "Monthly Quota")
	})

	t.Run("under limit", func(t *testing.T) {
		var buf bytes.Buffer
		RenderStatus(&buf, summary, 100_000)
		out := buf.String()
		assert.Contains(t, out, "Monthly Quota")
		assert.Contains(t, out, "Remaining:")
		assert.Contains(t, out, "25,000")
		assert.Contains(t, out, "75.0%")
		assert.Contains(t, out, strings.Repeat("█", 30)+strings.Repeat("░", 10))
	})

	t.Run("over limit", func(t *testing.T) {
		var buf bytes.Buffer
		RenderStatus(&buf, summary, 50_000)
		out := buf.String()
		assert.Contains(t, out, "Overage:")
		assert.Contains(t, out, "25,000")
		assert.Contains(t, out, "150.0%")
	})
}

func record(date string, in, out uint64) model.UsageRecord {
	return model.UsageRecord{
		StartingAt: date + "T00:00:00Z",
		Results:    []model.UsageDetail{{InputTokens: in, OutputTokens: out}},
	}
}

func TestRenderHistory(t *testing.T) {
	records := []model.UsageRecord{
		record("2026-03-01", 1000, 500),
		record("2026-03-03", 90_000, 20_000),
		record("2026-03-02", 40_000, 15_000),
	}

	var buf bytes.Buffer
	RenderHistory(&buf, records, 2)
	out := buf.String()

	assert.Contains(t, out, "Last 2 days")
	assert.NotContains(t, out, "2026-03-01")
	first := strings.Index(out, "2026-03-03")
	second := strings.Index(out, "2026-03-02")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, out, "110,000")
	assert.Contains(t, out, "165,000")
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderHistory(&buf, nil, 30)
	assert.Contains(t, buf.String(), "No usage data found")
}

func TestRenderSnapshotHistory(t *testing.T) {
	snaps := []model.Snapshot{liveSnapshot()}

	t.Run("full", func(t *testing.T) {
		t.Setenv("COLUMNS", "200")
		var buf bytes.Buffer
		RenderSnapshotHistory(&buf, snaps, TableOptions{})
		out := buf.String()
		assert.Contains(t, out, "Cache Read")
		assert.Contains(t, out, "2026-03-04")
		assert.Contains(t, out, "4,500")
	})

	t.Run("compact", func(t *testing.T) {
		t.Setenv("COLUMNS", "200")
		var buf bytes.Buffer
		RenderSnapshotHistory(&buf, snaps, TableOptions{ForceCompact: true})
		out := buf.String()
		assert.NotContains(t, out, "Cache Read")
		assert.Contains(t, out, "Compact mode")
	})

	t.Run("narrow terminal", func(t *testing.T) {
		t.Setenv("COLUMNS", "60")
		var buf bytes.Buffer
		RenderSnapshotHistory(&buf, snaps, TableOptions{})
		assert.Contains(t, buf.String(), "Compact mode")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		RenderSnapshotHistory(&buf, nil, TableOptions{})
		assert.Contains(t, buf.String(), "No recorded snapshots")
	})
}

func TestTerminalWidth(t *testing.T) {
	t.Setenv("COLUMNS", "132")
	assert.Equal(t, 132, TerminalWidth(&bytes.Buffer{}))

	t.Setenv("COLUMNS", "nonsense")
	assert.Equal(t, defaultWidth, TerminalWidth(&bytes.Buffer{}))
}
