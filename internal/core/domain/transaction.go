package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a local transaction record. Synced records carry the provider's
// ExternalID; manually entered ones do not.
// Amounts are signed: negative values are money leaving the account.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	ExternalID    *string         `json:"externalID,omitempty"`
	UserID        string          `json:"userID"`
	BankAccountID *string         `json:"bankAccountID,omitempty"`
	CategoryID    *string         `json:"categoryID,omitempty"` // weak reference, nulled on category delete
	CategoryName  *string         `json:"categoryName,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Name          string          `json:"name"`
	RemovedAt     *time.Time      `json:"-"` // tombstone from a provider removal
	AuditFields
}

// IsRemoved reports whether the record was tombstoned by a removal delta.
func (t Transaction) IsRemoved() bool {
	return t.RemovedAt != nil
}

// SameContent reports whether the mutable, provider-controlled fields of t and
// o are equal. Audit timestamps and ids are ignored.
func (t Transaction) SameContent(o Transaction) bool {
	return t.Amount.Equal(o.Amount) &&
		t.Date.Equal(o.Date) &&
		t.Name == o.Name &&
		equalStringPtr(t.CategoryID, o.CategoryID) &&
		equalStringPtr(t.BankAccountID, o.BankAccountID) &&
		t.IsRemoved() == o.IsRemoved()
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
