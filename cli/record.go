package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/zhaobenny/claude-token-counter/cli/internal/config"
	"github.com/zhaobenny/claude-token-counter/cli/internal/output"
	"github.com/zhaobenny/claude-token-counter/cli/internal/recorder"
	"github.com/zhaobenny/claude-token-counter/cli/internal/store"
)

var recordActions = []string{"run", "install", "start", "stop", "uninstall", "status"}

func newRecordCommand(a *app) *cobra.Command {
	var (
		interval    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:       "record [run|install|start|stop|uninstall|status]",
		Short:     "Record usage snapshots in the background",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: recordActions,
		Example: `  claude-token-counter record                  Record in the foreground
  claude-token-counter record install          Install service (records every minute)
  claude-token-counter record install --interval 5m
  claude-token-counter record stop             Stop the service`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.root()
			if err != nil {
				return err
			}
			dbPath, err := store.DefaultPath(config.AppName)
			if err != nil {
				return fmt.Errorf("failed to resolve snapshot store path: %w", err)
			}

			prog := &recorder.Program{
				Interval:    interval,
				Root:        root,
				DBPath:      dbPath,
				MetricsAddr: metricsAddr,
				Logger:      a.logger,
			}

			var extra []string
			if a.projectsDir != "" {
				extra = append(extra, "--projects-dir="+a.projectsDir)
			}
			if metricsAddr != "" {
				extra = append(extra, "--metrics-addr="+metricsAddr)
			}
			svc, err := service.New(prog, recorder.ServiceConfig(interval, extra...))
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}

			action := ""
			if len(args) == 1 {
				action = args[0]
			}

			switch action {
			case "":
				output.Status("Recording", "%s every %s into %s", root, interval, dbPath)
				return prog.Run(cmd.Context())

			case "run":
				// Invoked by the service manager.
				if svcLogger, err := svc.Logger(nil); err == nil {
					prog.ServiceLogger = svcLogger
				}
				logFile, err := openStateLog("recorder.log")
				if err != nil {
					return err
				}
				defer logFile.Close()
				prog.Logger = slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))
				return svc.Run()

			case "install":
				if err := svc.Install(); err != nil {
					return fmt.Errorf("failed to install service: %w", err)
				}
				if err := svc.Start(); err != nil {
					return fmt.Errorf("service installed but failed to start: %w", err)
				}
				output.Status("Installed", "recorder service, recording every %s", interval)

			case "start":
				if err := svc.Start(); err != nil {
					return fmt.Errorf("failed to start service: %w", err)
				}
				output.Status("Started", "recorder service")

			case "stop":
				if err := svc.Stop(); err != nil {
					return fmt.Errorf("failed to stop service: %w", err)
				}
				output.Status("Stopped", "recorder service")

			case "uninstall":
				svc.Stop() // may already be stopped
				if err := svc.Uninstall(); err != nil {
					return fmt.Errorf("failed to uninstall service: %w", err)
				}
				output.Status("Removed", "recorder service")

			case "status":
				status, err := svc.Status()
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Service status: not installed or error (%v)\n", err)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Service status: %s\n", recorder.StatusText(status))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", recorder.DefaultInterval, "recording interval (e.g. 30s, 5m)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "also serve Prometheus metrics on this address")
	return cmd
}
