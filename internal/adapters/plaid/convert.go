package plaid

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/plaid/plaid-go/v29/plaid"
	"github.com/shopspring/decimal"
)

const plaidDateLayout = "2006-01-02"

// Error codes that only a fresh user login can fix.
var reauthCodes = map[string]bool{
	"ITEM_LOGIN_REQUIRED":     true,
	"INVALID_ACCESS_TOKEN":    true,
	"ACCESS_NOT_GRANTED":      true,
	"ITEM_NOT_FOUND":          true,
	"USER_PERMISSION_REVOKED": true,
}

// Error types and codes that are safe to retry with the same cursor.
var (
	transientTypes = map[string]bool{
		"RATE_LIMIT_EXCEEDED": true,
		"API_ERROR":           true,
		"INSTITUTION_ERROR":   true,
	}
	transientCodes = map[string]bool{
		"TRANSACTIONS_SYNC_MUTATION_DURING_PAGINATION": true,
		"PRODUCT_NOT_READY":                            true,
	}
)

// classify maps a failed Plaid call onto the provider error taxonomy.
// status is 0 when no HTTP response arrived.
func classify(status int, errorType, errorCode string, err error) error {
	switch {
	case reauthCodes[errorCode]:
		return fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, errorCode)
	case transientTypes[errorType], transientCodes[errorCode]:
		return fmt.Errorf("%w: %s %s", apperrors.ErrTransientProvider, errorType, errorCode)
	case status == 0:
		// Transport failure, the request may not have reached Plaid
		return fmt.Errorf("%w: %v", apperrors.ErrTransientProvider, err)
	case status == http.StatusTooManyRequests, status >= 500:
		return fmt.Errorf("%w: http %d", apperrors.ErrTransientProvider, status)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: http %d", apperrors.ErrUnauthorized, status)
	}
	if errorCode != "" {
		return fmt.Errorf("%s %s: %w", errorType, errorCode, err)
	}
	return err
}

// ledgerTransaction builds a provider record. Plaid reports money leaving
// the account as a positive amount, so the sign is flipped.
func ledgerTransaction(id, accountID string, amount float64, date, name string, categoryKey *string) (domain.LedgerTransaction, error) {
	if id == "" {
		return domain.LedgerTransaction{}, errors.New("plaid transaction without id")
	}
	d, err := time.Parse(plaidDateLayout, date)
	if err != nil {
		return domain.LedgerTransaction{}, fmt.Errorf("plaid transaction %s: bad date %q: %w", id, date, err)
	}
	return domain.LedgerTransaction{
		ExternalID:        id,
		ExternalAccountID: accountID,
		Amount:            decimal.NewFromFloat(amount).Neg().Round(2),
		Date:              d,
		Name:              name,
		CategoryKey:       categoryKey,
	}, nil
}

func fromPlaidTransaction(t plaid.Transaction) (domain.LedgerTransaction, error) {
	var key *string
	if pfc, ok := t.GetPersonalFinanceCategoryOk(); ok && pfc != nil && pfc.GetPrimary() != "" {
		primary := pfc.GetPrimary()
		key = &primary
	}
	name := t.GetName()
	if merchant := t.GetMerchantName(); merchant != "" {
		name = merchant
	}
	return ledgerTransaction(t.GetTransactionId(), t.GetAccountId(), t.GetAmount(), t.GetDate(), name, key)
}
