package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/zhaobenny/claude-token-counter/cli/internal/config"
	"github.com/zhaobenny/claude-token-counter/cli/internal/output"
	"github.com/zhaobenny/claude-token-counter/internal/parser"
)

const version = "0.1.0"

// app carries the state shared by all subcommands
type app struct {
	debug       bool
	projectsDir string
	configDir   string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := newRootCommand(&app{})
	if err := root.ExecuteContext(ctx); err != nil {
		output.Error("%v", err)
		stop()
		os.Exit(1)
	}
	stop()
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "claude-token-counter",
		Short:         "Track Claude Code token usage from local logs and the usage API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.logger = newLogger(cmd.ErrOrStderr(), a.debug)
			slog.SetDefault(a.logger)

			cfg, err := config.Load(a.configDir)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.projectsDir, "projects-dir", "", "Claude Code projects directory (default ~/.claude/projects)")
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", config.DefaultDir(), "configuration directory")
	root.PersistentFlags().MarkHidden("projects-dir")
	root.PersistentFlags().MarkHidden("config-dir")

	root.AddCommand(
		newStatusCommand(a),
		newHistoryCommand(a),
		newConfigCommand(a),
		newLiveCommand(a),
		newRecordCommand(a),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "claude-token-counter version %s\n", version)
		},
	}
}

// newLogger logs warnings and above unless debug is set
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// openStateLog opens a log file under the XDG state directory for append
func openStateLog(name string) (*os.File, error) {
	path, err := xdg.StateFile(filepath.Join(config.AppName, name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log path: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}

// root returns the directory scanned for usage logs
func (a *app) root() (string, error) {
	if a.projectsDir != "" {
		return a.projectsDir, nil
	}
	return parser.DefaultProjectsDir()
}
