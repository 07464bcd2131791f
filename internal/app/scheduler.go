package app

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
)

// RunScheduler starts a sync of every active linked account now and then on
// each tick until ctx is done. Accounts already syncing are skipped by the
// sync service.
func RunScheduler(ctx context.Context, interval time.Duration, syncService portssvc.SyncTriggerSvc, logger *slog.Logger) {
	syncAll := func() {
		started, err := syncService.SyncAllActive(ctx)
		if err != nil {
			logger.Error("Scheduled sync failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("Scheduled sync started", slog.Int("runs", started))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	syncAll()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			syncAll()
		}
	}
}
