// Package recorder runs the monitor loop headless and persists every refresh,
// either in the foreground or as an OS background service.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kardianos/service"

	"github.com/zhaobenny/claude-token-counter/cli/internal/metrics"
	"github.com/zhaobenny/claude-token-counter/cli/internal/monitor"
	"github.com/zhaobenny/claude-token-counter/cli/internal/store"
	"github.com/zhaobenny/claude-token-counter/internal/parser"
)

const (
	ServiceName     = "claude-token-counter-recorder"
	DefaultInterval = time.Minute
)

// Program records snapshots of the local logs every Interval
type Program struct {
	Interval    time.Duration
	Root        string
	DBPath      string
	MetricsAddr string
	MaxTicks    int
	Logger      *slog.Logger

	// ServiceLogger receives fatal errors when running under the service manager.
	ServiceLogger service.Logger

	cancel context.CancelFunc
	done   chan error
}

// Start implements service.Interface
func (p *Program) Start(svc service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)

	go func() {
		err := p.Run(ctx)
		if err != nil && p.ServiceLogger != nil {
			p.ServiceLogger.Error(err)
		}
		p.done <- err
	}()
	return nil
}

// Stop implements service.Interface
func (p *Program) Stop(svc service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	<-p.done
	return nil
}

// Run records until ctx is cancelled. A missing or empty log directory is
// retried every interval so the recorder can be installed before first use.
func (p *Program) Run(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	db, err := store.Open(p.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate snapshot store: %w", err)
	}

	var exporter *metrics.Exporter
	if p.MetricsAddr != "" {
		exporter = metrics.New()
		srv, err := metrics.Listen(p.MetricsAddr, exporter, logger)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", p.MetricsAddr, err)
		}
		srv.Start(ctx)
	}

	for {
		// Each monitor run restarts at tick 1, so it gets its own run id.
		// The run row is only written once a tick succeeds.
		rec := store.NewRecorder(db, p.Root, logger)
		handlers := []monitor.Handler{rec}
		if exporter != nil {
			handlers = append(handlers, exporter)
		}

		m := monitor.New(p.Interval, monitor.CorpusSource{Root: p.Root, Logger: logger}, handlers...)
		m.MaxTicks = p.MaxTicks
		m.Logger = logger

		err := m.Run(ctx)
		if err == nil || !retryable(err) {
			return err
		}

		logger.Warn("no usage logs yet, retrying", "root", p.Root, "error", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(m.EffectiveInterval()):
		}
	}
}

func retryable(err error) bool {
	return errors.Is(err, parser.ErrNotFound) || errors.Is(err, parser.ErrNoData)
}

// ServiceConfig describes the recorder to the OS service manager. extraArgs are
// appended to the command line the service manager runs.
func ServiceConfig(interval time.Duration, extraArgs ...string) *service.Config {
	args := append([]string{"record", "run", fmt.Sprintf("--interval=%s", interval)}, extraArgs...)
	return &service.Config{
		Name:        ServiceName,
		DisplayName: "Claude Token Counter Recorder",
		Description: "Records Claude Code token usage snapshots from local logs",
		Arguments:   args,
		Option: service.KeyValue{
			"UserService": true,
		},
	}
}

// StatusText describes a service status for display
func StatusText(status service.Status) string {
	switch status {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
