package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetReader defines read operations for budgets and goals
type BudgetReader interface {
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)

	// ListBudgetsByCategories returns a user's budgets tracking any of the given
	// categories, plus the uncategorized ones when includeOverall is set.
	ListBudgetsByCategories(ctx context.Context, userID string, categoryIDs []string, includeOverall bool) ([]domain.Budget, error)

	FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]domain.Goal, error)

	// ListGoalsByTargets returns a user's goals tracking any of the given
	// categories or bank accounts.
	ListGoalsByTargets(ctx context.Context, userID string, categoryIDs, bankAccountIDs []string) ([]domain.Goal, error)
}

// BudgetWriter defines write operations for budgets and goals
type BudgetWriter interface {
	SaveBudget(ctx context.Context, budget domain.Budget) error
	UpdateBudget(ctx context.Context, budget domain.Budget) error
	DeleteBudget(ctx context.Context, budgetID string) error

	// UpdateBudgetProgress writes only the derived figures of a budget.
	UpdateBudgetProgress(ctx context.Context, budgetID string, current decimal.Decimal, completed bool, updatedAt time.Time) error

	SaveGoal(ctx context.Context, goal domain.Goal) error
	UpdateGoal(ctx context.Context, goal domain.Goal) error
	DeleteGoal(ctx context.Context, goalID string) error

	// UpdateGoalProgress writes only the derived figures of a goal.
	UpdateGoalProgress(ctx context.Context, goalID string, current decimal.Decimal, completed bool, updatedAt time.Time) error
}

// BudgetRepositoryFacade combines all budget and goal repository interfaces
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
