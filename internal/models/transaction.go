package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of transactions. CategoryName is filled by joins only.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	ExternalID    *string         `db:"external_id"`
	UserID        string          `db:"user_id"`
	BankAccountID *string         `db:"bank_account_id"`
	CategoryID    *string         `db:"category_id"`
	CategoryName  *string         `db:"category_name"`
	Amount        decimal.Decimal `db:"amount"`
	Date          time.Time       `db:"txn_date"`
	Name          string          `db:"name"`
	RemovedAt     *time.Time      `db:"removed_at"`
	AuditFields
}
