// Package monitor drives the periodic aggregate-and-render cycle used by the
// live view and the background recorder.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zhaobenny/claude-token-counter/internal/model"
	"github.com/zhaobenny/claude-token-counter/internal/parser"
	"github.com/zhaobenny/claude-token-counter/internal/pricing"
)

// MinInterval is the shortest refresh interval the loop will honour.
const MinInterval = time.Second

// Source produces one aggregation pass over the usage logs
type Source interface {
	Aggregate(ctx context.Context) (parser.Report, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (parser.Report, error)

func (f SourceFunc) Aggregate(ctx context.Context) (parser.Report, error) { return f(ctx) }

// Handler consumes the snapshot produced by each tick
type Handler interface {
	HandleSnapshot(ctx context.Context, snap model.Snapshot) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, snap model.Snapshot) error

func (f HandlerFunc) HandleSnapshot(ctx context.Context, snap model.Snapshot) error {
	return f(ctx, snap)
}

// TerminalError stops the loop when a full aggregation pass fails
type TerminalError struct {
	Tick int
	Err  error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("monitoring stopped at refresh %d: %v", e.Tick, e.Err)
}

func (e *TerminalError) Unwrap() error { return e.Err }

// Monitor aggregates usage, hands the snapshot to its handlers, then sleeps
// for Interval. It runs until the context is cancelled, an aggregation pass
// fails, or MaxTicks ticks have completed (0 means no limit).
type Monitor struct {
	Interval time.Duration
	Source   Source
	Handlers []Handler
	MaxTicks int
	Logger   *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a monitor with the given refresh interval
func New(interval time.Duration, source Source, handlers ...Handler) *Monitor {
	return &Monitor{
		Interval: interval,
		Source:   source,
		Handlers: handlers,
	}
}

// EffectiveInterval returns Interval clamped to MinInterval
func (m *Monitor) EffectiveInterval() time.Duration {
	if m.Interval < MinInterval {
		return MinInterval
	}
	return m.Interval
}

// Run executes the loop. Cancellation is not an error.
func (m *Monitor) Run(ctx context.Context) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := m.now
	if now == nil {
		now = time.Now
	}
	sleep := m.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	interval := m.EffectiveInterval()

	for tick := 1; m.MaxTicks == 0 || tick <= m.MaxTicks; tick++ {
		if ctx.Err() != nil {
			return nil
		}

		report, err := m.Source.Aggregate(ctx)
		if err != nil {
			return &TerminalError{Tick: tick, Err: err}
		}

		snap := model.Snapshot{
			Tick:         tick,
			TakenAt:      now(),
			Usage:        report.Usage,
			Cost:         pricing.EstimateCost(report.Usage),
			Files:        report.Files,
			FailedFiles:  report.FailedFiles,
			SkippedLines: report.SkippedLines,
		}
		for _, h := range m.Handlers {
			if err := h.HandleSnapshot(ctx, snap); err != nil {
				logger.Warn("snapshot handler failed", "tick", tick, "error", err)
			}
		}

		if tick == m.MaxTicks {
			break
		}
		if err := sleep(ctx, interval); err != nil {
			logger.Debug("monitor cancelled", "tick", tick)
			return nil
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CorpusSource aggregates every JSONL file under Root on each call
type CorpusSource struct {
	Root   string
	Logger *slog.Logger
}

func (s CorpusSource) Aggregate(_ context.Context) (parser.Report, error) {
	return parser.ParseAllFiles(s.Root, s.Logger)
}
