package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhaobenny/claude-token-counter/cli/internal/config"
	"github.com/zhaobenny/claude-token-counter/cli/internal/output"
)

func newConfigCommand(a *app) *cobra.Command {
	var (
		apiKey       string
		monthlyLimit uint64
		show         bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure the API key and monthly limit",
		Args:  cobra.NoArgs,
		Example: `  claude-token-counter config --api-key sk-ant-admin-...
  claude-token-counter config --monthly-limit 5000000
  claude-token-counter config --show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed := false
			if cmd.Flags().Changed("api-key") {
				a.cfg.APIKey = apiKey
				changed = true
			}
			if cmd.Flags().Changed("monthly-limit") {
				a.cfg.MonthlyLimit = monthlyLimit
				changed = true
			}

			if changed {
				if err := config.Save(a.configDir, a.cfg); err != nil {
					return fmt.Errorf("failed to save config: %w", err)
				}
				output.Status("Saved", "configuration to %s", config.Path(a.configDir))
			}

			if show || !changed {
				printConfig(cmd, a)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Admin API key used for the usage report")
	cmd.Flags().Uint64Var(&monthlyLimit, "monthly-limit", 0, "monthly token limit (0 disables the quota display)")
	cmd.Flags().BoolVar(&show, "show", false, "show the current configuration")
	return cmd
}

func printConfig(cmd *cobra.Command, a *app) {
	w := cmd.OutOrStdout()
	limit := "(not set)"
	if a.cfg.MonthlyLimit > 0 {
		limit = output.FormatNumber(a.cfg.MonthlyLimit)
	}
	metricsAddr := a.cfg.MetricsAddr
	if metricsAddr == "" {
		metricsAddr = "(disabled)"
	}

	fmt.Fprintf(w, "Config file:     %s\n", config.Path(a.configDir))
	fmt.Fprintf(w, "API key:         %s\n", a.cfg.MaskedAPIKey())
	fmt.Fprintf(w, "Monthly limit:   %s\n", limit)
	fmt.Fprintf(w, "Refresh seconds: %d\n", a.cfg.RefreshSeconds)
	fmt.Fprintf(w, "Metrics address: %s\n", metricsAddr)
	fmt.Fprintf(w, "API base URL:    %s\n", a.cfg.BaseURL)
}
