// Command syncctl runs bank syncs outside the API server: one-off runs,
// a periodic scheduler, and bearer tokens for local testing.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/budget_sync_app/internal/platform/config"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "syncctl",
	Short:         "Operate bank transaction syncs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, scheduleCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
