package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
)

// LinkedAccountReader defines read operations for linked accounts and their bank accounts
type LinkedAccountReader interface {
	// FindLinkedAccountByID retrieves a linked account by its unique identifier.
	FindLinkedAccountByID(ctx context.Context, linkedAccountID string) (*domain.LinkedAccount, error)

	// FindLinkedAccountByExternalItemID retrieves a linked account by the provider's item id.
	FindLinkedAccountByExternalItemID(ctx context.Context, externalItemID string) (*domain.LinkedAccount, error)

	// ListLinkedAccounts returns the summaries matching the filter, with bank account counts.
	ListLinkedAccounts(ctx context.Context, filter domain.LinkedAccountFilter) ([]domain.LinkedAccountSummary, error)

	// ListActiveLinkedAccountIDs returns the ids of all active linked accounts across users.
	ListActiveLinkedAccountIDs(ctx context.Context) ([]string, error)

	// FindBankAccountByID retrieves a bank account by its unique identifier.
	FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)

	// ListBankAccounts returns the bank accounts of a linked account.
	ListBankAccounts(ctx context.Context, linkedAccountID string) ([]domain.BankAccount, error)

	// FindBankAccountsByExternalIDs maps provider account ids to known bank accounts.
	// Unknown ids are absent from the result.
	FindBankAccountsByExternalIDs(ctx context.Context, externalIDs []string) (map[string]domain.BankAccount, error)
}

// LinkedAccountWriter defines write operations for linked accounts
type LinkedAccountWriter interface {
	// SaveLinkedAccount inserts a new linked account. A second account for the
	// same provider item fails with ErrDuplicate.
	SaveLinkedAccount(ctx context.Context, account domain.LinkedAccount) error

	// SaveBankAccounts inserts bank accounts, skipping provider ids already stored.
	SaveBankAccounts(ctx context.Context, accounts []domain.BankAccount) error

	// SetLinkedAccountActive toggles the active flag.
	SetLinkedAccountActive(ctx context.Context, linkedAccountID string, active bool, updatedAt time.Time) error

	// AdvanceCursor moves the stored cursor from expected to next. It fails with
	// ErrStorageConflict when the stored cursor is no longer expected.
	AdvanceCursor(ctx context.Context, linkedAccountID string, expected *string, next string, updatedAt time.Time) error
}

// LinkedAccountRepositoryFacade combines all linked account repository interfaces
type LinkedAccountRepositoryFacade interface {
	LinkedAccountReader
	LinkedAccountWriter
}
