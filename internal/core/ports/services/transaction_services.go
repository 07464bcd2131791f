package services

import (
	"context"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/dto"
)

// TransactionReaderSvc defines read operations for transactions
type TransactionReaderSvc interface {
	ListTransactions(ctx context.Context, identity domain.Identity, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines write operations for manual transaction edits.
// Each write refreshes the affected budgets and goals in the same unit of work.
type TransactionWriterSvc interface {
	CreateTransaction(ctx context.Context, identity domain.Identity, req dto.CreateTransactionRequest) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, identity domain.Identity, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)
	DeleteTransactions(ctx context.Context, identity domain.Identity, req dto.DeleteTransactionsRequest) (int, error)
}

// TransactionSvcFacade combines all transaction service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
