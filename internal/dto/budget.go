package dto

import (
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the data needed to create a budget.
// The current amount is always derived from transactions.
type CreateBudgetRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	TargetAmount decimal.Decimal `json:"targetAmount" binding:"required,gt=0"`
	StartDate    time.Time       `json:"startDate" binding:"required"`
	EndDate      time.Time       `json:"endDate" binding:"required"`
	CategoryID   *string         `json:"categoryID"`
}

// UpdateBudgetRequest defines the editable fields of a budget.
type UpdateBudgetRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	TargetAmount  *decimal.Decimal `json:"targetAmount"`
	StartDate     *time.Time       `json:"startDate"`
	EndDate       *time.Time       `json:"endDate"`
	CategoryID    *string          `json:"categoryID"`
	ClearCategory bool             `json:"clearCategory"`
}

// BudgetResponse defines the data returned for a budget.
type BudgetResponse struct {
	BudgetID      string          `json:"budgetID"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	CategoryID    *string         `json:"categoryID,omitempty"`
	IsCompleted   bool            `json:"isCompleted"`
}

// CreateGoalRequest defines the data needed to create a savings goal.
type CreateGoalRequest struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"targetAmount" binding:"required,gt=0"`
	StartDate     time.Time       `json:"startDate" binding:"required"`
	EndDate       time.Time       `json:"endDate" binding:"required"`
	CategoryID    *string         `json:"categoryID"`
	BankAccountID *string         `json:"bankAccountID"`
}

// UpdateGoalRequest defines the editable fields of a goal.
type UpdateGoalRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	TargetAmount  *decimal.Decimal `json:"targetAmount"`
	StartDate     *time.Time       `json:"startDate"`
	EndDate       *time.Time       `json:"endDate"`
	CategoryID    *string          `json:"categoryID"`
	BankAccountID *string          `json:"bankAccountID"`
}

// GoalResponse defines the data returned for a goal.
type GoalResponse struct {
	GoalID        string          `json:"goalID"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	CategoryID    *string         `json:"categoryID,omitempty"`
	BankAccountID *string         `json:"bankAccountID,omitempty"`
	IsCompleted   bool            `json:"isCompleted"`
}

// ToBudgetResponse converts a domain.Budget to BudgetResponse DTO.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:      b.BudgetID,
		Title:         b.Title,
		Description:   b.Description,
		TargetAmount:  b.TargetAmount,
		CurrentAmount: b.CurrentAmount,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		CategoryID:    b.CategoryID,
		IsCompleted:   b.IsCompleted,
	}
}

// ToBudgetResponses converts a slice of domain.Budget.
func ToBudgetResponses(budgets []domain.Budget) []BudgetResponse {
	res := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		res[i] = ToBudgetResponse(&budgets[i])
	}
	return res
}

// ToGoalResponse converts a domain.Goal to GoalResponse DTO.
func ToGoalResponse(g *domain.Goal) GoalResponse {
	return GoalResponse{
		GoalID:        g.GoalID,
		Title:         g.Title,
		Description:   g.Description,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		StartDate:     g.StartDate,
		EndDate:       g.EndDate,
		CategoryID:    g.CategoryID,
		BankAccountID: g.BankAccountID,
		IsCompleted:   g.IsCompleted,
	}
}

// ToGoalResponses converts a slice of domain.Goal.
func ToGoalResponses(goals []domain.Goal) []GoalResponse {
	res := make([]GoalResponse, len(goals))
	for i := range goals {
		res[i] = ToGoalResponse(&goals[i])
	}
	return res
}
