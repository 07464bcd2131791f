package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a row of budgets.
type Budget struct {
	BudgetID      string          `db:"budget_id"`
	UserID        string          `db:"user_id"`
	Title         string          `db:"title"`
	Description   string          `db:"description"`
	TargetAmount  decimal.Decimal `db:"target_amount"`
	CurrentAmount decimal.Decimal `db:"current_amount"`
	StartDate     time.Time       `db:"start_date"`
	EndDate       time.Time       `db:"end_date"`
	CategoryID    *string         `db:"category_id"`
	IsCompleted   bool            `db:"is_completed"`
	AuditFields
}

// Goal is a row of goals.
type Goal struct {
	GoalID        string          `db:"goal_id"`
	UserID        string          `db:"user_id"`
	Title         string          `db:"title"`
	Description   string          `db:"description"`
	TargetAmount  decimal.Decimal `db:"target_amount"`
	CurrentAmount decimal.Decimal `db:"current_amount"`
	StartDate     time.Time       `db:"start_date"`
	EndDate       time.Time       `db:"end_date"`
	CategoryID    *string         `db:"category_id"`
	BankAccountID *string         `db:"bank_account_id"`
	IsCompleted   bool            `db:"is_completed"`
	AuditFields
}
