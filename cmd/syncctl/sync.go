package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/budget_sync_app/internal/app"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync <linked-account-id>",
	Short: "Sync one linked bank and wait for the run to finish",
	Long: `Sync one linked bank from its stored cursor until the provider has no
more pages, then print the run as JSON.

Interrupting stops the run between pages; the stored cursor always points at
the last fully committed page.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		run, err := application.Services.Sync.RunSync(ctx, domain.SystemIdentity(), args[0])
		if run != nil {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(dto.ToSyncRunResponse(run)); encErr != nil {
				return encErr
			}
		}
		if err != nil {
			return fmt.Errorf("sync of %s failed: %w", args[0], err)
		}
		return nil
	},
}
