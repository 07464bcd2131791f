package repositories

import (
	"context"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction, tombstoned or not.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByIDs retrieves the listed transactions that exist.
	FindTransactionsByIDs(ctx context.Context, transactionIDs []string) ([]domain.Transaction, error)

	// FindTransactionsByExternalIDs maps provider transaction ids to stored records,
	// tombstoned records included. Unknown ids are absent from the result.
	FindTransactionsByExternalIDs(ctx context.Context, externalIDs []string) (map[string]domain.Transaction, error)

	// ListTransactions returns a page of transactions matching the filter, newest
	// first, with category names filled in. It returns the token for the next page.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindAllTransactions returns every transaction matching the filter.
	FindAllTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)

	// SumTransactions returns the signed sum of the amounts matching the filter.
	SumTransactions(ctx context.Context, filter domain.TransactionFilter) (decimal.Decimal, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransaction inserts a new transaction. A duplicate external id fails with ErrStorageConflict.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction overwrites a stored transaction, tombstone included.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransactions hard-deletes the listed transactions of a user and
	// reports how many rows went away.
	DeleteTransactions(ctx context.Context, userID string, transactionIDs []string) (int, error)
}

// TransactionRepositoryFacade combines all transaction repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
