package services

import (
	"context"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
)

// SyncTriggerSvc starts sync runs for linked accounts
type SyncTriggerSvc interface {
	// TriggerSync starts a run in the background and returns its initial snapshot.
	// A second trigger while a run holds the account fails with ErrAlreadyRunning.
	TriggerSync(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.SyncRun, error)

	// RunSync is TriggerSync that waits for the run to finish.
	RunSync(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.SyncRun, error)

	// TriggerSyncForItem triggers the linked account behind a provider item, as the system.
	TriggerSyncForItem(ctx context.Context, externalItemID string) (*domain.SyncRun, error)

	// SyncAllActive triggers every active linked account that is not already
	// running and reports how many runs were started.
	SyncAllActive(ctx context.Context) (int, error)
}

// SyncStatusSvc reports sync progress
type SyncStatusSvc interface {
	// GetSyncStatus returns the latest run for the account, or an IDLE snapshot
	// if it never ran in this process.
	GetSyncStatus(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.SyncRun, error)
}

// SyncSvcFacade combines all sync service interfaces
type SyncSvcFacade interface {
	SyncTriggerSvc
	SyncStatusSvc

	// Close cancels in-flight runs and waits for them to stop.
	Close()
}

// ReconciliationEngine applies one delta page to local storage.
type ReconciliationEngine interface {
	ApplyDelta(ctx context.Context, store repositories.LedgerTxStore, account *domain.LinkedAccount, expectedCursor *string, page *domain.DeltaPage) (*domain.ApplyResult, error)
}

// AggregateRecalculator refreshes the derived figures of budgets and goals.
type AggregateRecalculator interface {
	Recompute(ctx context.Context, store repositories.LedgerTxStore, touched domain.TouchedSet) (*domain.RecomputeResult, error)
}
