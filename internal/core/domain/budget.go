package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps (expense) or targets (income) the money flowing through a
// category during a date window. CurrentAmount and IsCompleted are derived.
type Budget struct {
	BudgetID      string          `json:"budgetID"`
	UserID        string          `json:"userID"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	CategoryID    *string         `json:"categoryID,omitempty"` // nil tracks all of the user's transactions
	IsCompleted   bool            `json:"isCompleted"`
	AuditFields
}

// Goal is a savings target. It tracks a category, a bank account, or both.
type Goal struct {
	GoalID        string          `json:"goalID"`
	UserID        string          `json:"userID"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	CategoryID    *string         `json:"categoryID,omitempty"`
	BankAccountID *string         `json:"bankAccountID,omitempty"`
	IsCompleted   bool            `json:"isCompleted"`
	AuditFields
}

// IsTracked reports whether the goal's progress is derived from transactions.
func (g Goal) IsTracked() bool {
	return g.CategoryID != nil || g.BankAccountID != nil
}

// BudgetCompleted decides completion for a budget given the type of its category.
// Expense budgets count spending (negative amounts) towards the target.
func BudgetCompleted(current, target decimal.Decimal, categoryType CategoryType) bool {
	if categoryType == CategoryIncome {
		return current.GreaterThanOrEqual(target)
	}
	return current.Neg().GreaterThanOrEqual(target)
}

// GoalCompleted decides completion for a savings goal.
func GoalCompleted(current, target decimal.Decimal) bool {
	return current.GreaterThanOrEqual(target)
}
