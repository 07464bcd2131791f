package services

import "context"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Sync          SyncSvcFacade
	LinkedAccount LinkedAccountSvcFacade
	Transaction   TransactionSvcFacade
	Category      CategorySvcFacade
	Budget        BudgetSvcFacade
}

// ChangeNotifier tells downstream consumers that a user's ledger changed.
// Delivery failures are reported but never undo the change.
type ChangeNotifier interface {
	NotifyLedgerChanged(ctx context.Context, userID string) error
}

// TokenSealer encrypts provider access tokens at rest.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}
