package services

import (
	"github.com/SscSPs/budget_sync_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	provider providers.LedgerProvider,
	sealer portssvc.TokenSealer,
	notifier portssvc.ChangeNotifier,
) *portssvc.ServiceContainer {
	recalculator := NewAggregateRecalculator()

	syncSvc := NewSyncService(
		repos,
		provider,
		NewReconciliationEngine(),
		recalculator,
		sealer,
		WithChangeNotifier(notifier),
		WithSyncConfig(SyncConfig{
			MaxAttempts:    cfg.SyncMaxAttempts,
			InitialBackoff: cfg.SyncInitialBackoff,
			MaxBackoff:     cfg.SyncMaxBackoff,
		}),
	)

	return &portssvc.ServiceContainer{
		Sync:          syncSvc,
		LinkedAccount: NewLinkedAccountService(repos, provider, sealer, syncSvc),
		Transaction:   NewTransactionService(repos, recalculator, notifier),
		Category:      NewCategoryService(repos, recalculator, notifier),
		Budget:        NewBudgetService(repos, recalculator),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.SyncSvcFacade          = (*syncService)(nil)
	_ portssvc.LinkedAccountSvcFacade = (*linkedAccountService)(nil)
	_ portssvc.TransactionSvcFacade   = (*transactionService)(nil)
	_ portssvc.CategorySvcFacade      = (*categoryService)(nil)
	_ portssvc.BudgetSvcFacade        = (*budgetService)(nil)
	_ portssvc.ReconciliationEngine   = (*reconciliationEngine)(nil)
	_ portssvc.AggregateRecalculator  = (*AggregateRecalculator)(nil)
)
