package services

import (
	"context"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/dto"
)

// LinkedAccountReaderSvc defines read operations for linked accounts
type LinkedAccountReaderSvc interface {
	GetLinkedAccount(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.LinkedAccount, []domain.BankAccount, error)
	ListLinkedAccounts(ctx context.Context, identity domain.Identity, params dto.ListLinkedAccountsParams) ([]domain.LinkedAccountSummary, error)
}

// LinkedAccountWriterSvc defines write operations for linked accounts
type LinkedAccountWriterSvc interface {
	// ExchangePublicToken links a new institution for the caller and starts its first sync.
	ExchangePublicToken(ctx context.Context, identity domain.Identity, req dto.ExchangePublicTokenRequest) (*domain.LinkedAccount, []domain.BankAccount, error)

	SetLinkedAccountActive(ctx context.Context, identity domain.Identity, linkedAccountID string, active bool) (*domain.LinkedAccount, error)
}

// LinkedAccountSvcFacade combines all linked account service interfaces
type LinkedAccountSvcFacade interface {
	LinkedAccountReaderSvc
	LinkedAccountWriterSvc
}
