package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhaobenny/claude-token-counter/internal/model"
	"github.com/zhaobenny/claude-token-counter/internal/parser"
	"github.com/zhaobenny/claude-token-counter/internal/pricing"
)

type recorder struct {
	snaps []model.Snapshot
}

func (r *recorder) HandleSnapshot(_ context.Context, snap model.Snapshot) error {
	r.snaps = append(r.snaps, snap)
	return nil
}

func fixedReport(usage model.AggregatedUsage) SourceFunc {
	return func(context.Context) (parser.Report, error) {
		return parser.Report{Usage: usage, Files: 1}, nil
	}
}

func TestMonitorRunsBoundedTicks(t *testing.T) {
	usage := model.AggregatedUsage{TotalInput: 30, TotalOutput: 5, TotalCacheRead: 5, MessageCount: 2}
	rec := &recorder{}
	var slept []time.Duration

	m := New(2*time.Second, fixedReport(usage), rec)
	m.MaxTicks = 3
	m.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	require.NoError(t, m.Run(context.Background()))

	require.Len(t, rec.snaps, 3)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, slept)
	for i, snap := range rec.snaps {
		assert.Equal(t, i+1, snap.Tick)
		assert.Equal(t, usage, snap.Usage)
		assert.Equal(t, pricing.EstimateCost(usage), snap.Cost)
		assert.Equal(t, 1, snap.Files)
	}
}

func TestMonitorClampsInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second, 200 * time.Millisecond} {
		m := New(interval, nil)
		assert.Equal(t, MinInterval, m.EffectiveInterval())
	}
	assert.Equal(t, 5*time.Second, New(5*time.Second, nil).EffectiveInterval())
}

func TestMonitorStopsOnAggregationFailure(t *testing.T) {
	calls := 0
	source := SourceFunc(func(context.Context) (parser.Report, error) {
		calls++
		if calls == 2 {
			return parser.Report{}, parser.ErrNotFound
		}
		return parser.Report{Files: 1}, nil
	})
	rec := &recorder{}

	m := New(time.Second, source, rec)
	m.sleep = func(context.Context, time.Duration) error { return nil }

	err := m.Run(context.Background())
	require.Error(t, err)

	var terminal *TerminalError
	require.True(t, errors.As(err, &terminal))
	assert.Equal(t, 2, terminal.Tick)
	assert.True(t, errors.Is(err, parser.ErrNotFound))
	assert.Len(t, rec.snaps, 1)
}

func TestMonitorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}

	m := New(time.Second, fixedReport(model.AggregatedUsage{}), rec)
	m.sleep = func(ctx context.Context, _ time.Duration) error {
		if len(rec.snaps) == 2 {
			cancel()
		}
		return ctx.Err()
	}

	require.NoError(t, m.Run(ctx))
	assert.Len(t, rec.snaps, 2)
}

func TestMonitorCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}

	require.NoError(t, New(time.Second, fixedReport(model.AggregatedUsage{}), rec).Run(ctx))
	assert.Empty(t, rec.snaps)
}

func TestMonitorHandlerErrorsAreNotFatal(t *testing.T) {
	rec := &recorder{}
	failing := HandlerFunc(func(context.Context, model.Snapshot) error {
		return errors.New("disk full")
	})

	m := New(time.Second, fixedReport(model.AggregatedUsage{}), failing, rec)
	m.MaxTicks = 2
	m.sleep = func(context.Context, time.Duration) error { return nil }

	require.NoError(t, m.Run(context.Background()))
	assert.Len(t, rec.snaps, 2)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

func TestCorpusSource(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "proj", "s.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"message":{"usage":{"input_tokens":4}}}`+"\n"), 0o644))

	report, err := CorpusSource{Root: root}.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), report.Usage.TotalInput)

	_, err = CorpusSource{Root: filepath.Join(root, "missing")}.Aggregate(context.Background())
	assert.ErrorIs(t, err, parser.ErrNotFound)
}
