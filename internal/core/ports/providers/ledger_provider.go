package providers

import (
	"context"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
)

// LedgerProvider is the external aggregation API that owns the bank ledger.
//
// FetchPage returns the changes after cursor (nil asks for the full history).
// Implementations classify failures: apperrors.ErrTransientProvider for
// anything safe to retry with the same cursor, apperrors.ErrUnauthorized when
// the access token was revoked or needs re-authentication.
type LedgerProvider interface {
	FetchPage(ctx context.Context, accessToken string, cursor *string) (*domain.DeltaPage, error)

	// ExchangePublicToken swaps the short-lived token from the link flow for a
	// long-lived access token.
	ExchangePublicToken(ctx context.Context, publicToken string) (*domain.LinkToken, error)

	GetInstitution(ctx context.Context, accessToken string) (*domain.Institution, error)

	// GetAccounts lists the accounts behind an access token. The returned bank
	// accounts carry only provider data; ids are assigned by the caller.
	GetAccounts(ctx context.Context, accessToken string) ([]domain.BankAccount, error)
}
