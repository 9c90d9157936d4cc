package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhaobenny/claude-token-counter/cli/internal/config"
	"github.com/zhaobenny/claude-token-counter/cli/internal/metrics"
	"github.com/zhaobenny/claude-token-counter/cli/internal/monitor"
	"github.com/zhaobenny/claude-token-counter/cli/internal/output"
	"github.com/zhaobenny/claude-token-counter/cli/internal/store"
)

// maxRefreshSeconds keeps the refresh interval within time.Duration
const maxRefreshSeconds = 24 * 60 * 60

func newLiveCommand(a *app) *cobra.Command {
	var (
		refresh     int
		metricsAddr string
		record      bool
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Continuously display token usage from local Claude Code logs",
		Args:  cobra.NoArgs,
		Example: `  claude-token-counter live
  claude-token-counter live --refresh 10
  claude-token-counter live --metrics-addr 127.0.0.1:9464 --record`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			root, err := a.root()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("refresh") {
				refresh = a.cfg.RefreshSeconds
			}
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = a.cfg.MetricsAddr
			}

			if refresh > maxRefreshSeconds {
				return fmt.Errorf("refresh interval %ds exceeds the maximum of %ds", refresh, maxRefreshSeconds)
			}

			// The redraw would overwrite anything logged to the terminal.
			logger := a.logger
			if !a.debug {
				logFile, err := openStateLog("live.log")
				if err != nil {
					return err
				}
				defer logFile.Close()
				logger = slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))
			}

			m := monitor.New(time.Duration(refresh)*time.Second, monitor.CorpusSource{Root: root, Logger: logger})
			m.Logger = logger
			if m.Interval < monitor.MinInterval {
				output.Warn("refresh interval %ds is below the minimum, using %s", refresh, m.EffectiveInterval())
			}

			m.Handlers = append(m.Handlers, output.NewLiveRenderer(cmd.OutOrStdout(), m.EffectiveInterval()))

			if metricsAddr != "" {
				exporter := metrics.New()
				srv, err := metrics.Listen(metricsAddr, exporter, logger)
				if err != nil {
					return fmt.Errorf("failed to listen on %s: %w", metricsAddr, err)
				}
				srv.Start(ctx)
				m.Handlers = append(m.Handlers, exporter)
			}

			if record {
				db, err := openStore()
				if err != nil {
					return err
				}
				defer db.Close()

				m.Handlers = append(m.Handlers, store.NewRecorder(db, root, logger))
			}

			if err := m.Run(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout())
			output.Status("Stopped", "monitoring")
			return nil
		},
	}

	cmd.Flags().IntVar(&refresh, "refresh", config.DefaultRefreshSeconds, "refresh interval in seconds")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&record, "record", false, "persist each refresh to the local snapshot store")
	return cmd
}

// openStore opens and migrates the default snapshot database
func openStore() (*store.DB, error) {
	path, err := store.DefaultPath(config.AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve snapshot store path: %w", err)
	}

	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate snapshot store: %w", err)
	}
	return db, nil
}
