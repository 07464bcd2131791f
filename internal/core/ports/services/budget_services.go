package services

import (
	"context"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/dto"
)

// BudgetSvc defines budget operations
type BudgetSvc interface {
	CreateBudget(ctx context.Context, identity domain.Identity, req dto.CreateBudgetRequest) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, identity domain.Identity, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error)
	ListBudgets(ctx context.Context, identity domain.Identity) ([]domain.Budget, error)
	DeleteBudget(ctx context.Context, identity domain.Identity, budgetID string) error
}

// GoalSvc defines savings goal operations
type GoalSvc interface {
	CreateGoal(ctx context.Context, identity domain.Identity, req dto.CreateGoalRequest) (*domain.Goal, error)
	UpdateGoal(ctx context.Context, identity domain.Identity, goalID string, req dto.UpdateGoalRequest) (*domain.Goal, error)
	ListGoals(ctx context.Context, identity domain.Identity) ([]domain.Goal, error)
	DeleteGoal(ctx context.Context, identity domain.Identity, goalID string) error
}

// BudgetSvcFacade combines budget and goal services
type BudgetSvcFacade interface {
	BudgetSvc
	GoalSvc
}
