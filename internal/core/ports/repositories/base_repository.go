package repositories

import "context"

// LedgerTxStore is the view of storage available inside one unit of work.
// Every write made through it commits or rolls back together.
type LedgerTxStore interface {
	LinkedAccounts() LinkedAccountRepositoryFacade
	Transactions() TransactionRepositoryFacade
	Categories() CategoryRepositoryFacade
	Budgets() BudgetRepositoryFacade
}

// UnitOfWork runs a function inside a single storage transaction.
// If fn returns an error nothing it wrote is visible afterwards.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store LedgerTxStore) error) error
}
