package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (r *repo) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	var out *domain.Budget
	err := r.read(func(s *memState) error {
		b, ok := s.budgets[budgetID]
		if !ok {
			return apperrors.NewNotFoundError("budget " + budgetID)
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *repo) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	return r.selectBudgets(func(b domain.Budget) bool { return b.UserID == userID })
}

func (r *repo) ListBudgetsByCategories(ctx context.Context, userID string, categoryIDs []string, includeOverall bool) ([]domain.Budget, error) {
	wanted := toSet(categoryIDs)
	return r.selectBudgets(func(b domain.Budget) bool {
		if b.UserID != userID {
			return false
		}
		if b.CategoryID == nil {
			return includeOverall
		}
		_, ok := wanted[*b.CategoryID]
		return ok
	})
}

func (r *repo) selectBudgets(keep func(domain.Budget) bool) ([]domain.Budget, error) {
	var out []domain.Budget
	err := r.read(func(s *memState) error {
		for _, b := range s.budgets {
			if keep(b) {
				out = append(out, b)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].StartDate.Equal(out[j].StartDate) {
				return out[i].StartDate.Before(out[j].StartDate)
			}
			return out[i].BudgetID < out[j].BudgetID
		})
		return nil
	})
	return out, err
}

func (r *repo) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	var out *domain.Goal
	err := r.read(func(s *memState) error {
		g, ok := s.goals[goalID]
		if !ok {
			return apperrors.NewNotFoundError("goal " + goalID)
		}
		out = &g
		return nil
	})
	return out, err
}

func (r *repo) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	return r.selectGoals(func(g domain.Goal) bool { return g.UserID == userID })
}

func (r *repo) ListGoalsByTargets(ctx context.Context, userID string, categoryIDs, bankAccountIDs []string) ([]domain.Goal, error) {
	cats, accts := toSet(categoryIDs), toSet(bankAccountIDs)
	return r.selectGoals(func(g domain.Goal) bool {
		if g.UserID != userID {
			return false
		}
		if g.CategoryID != nil {
			if _, ok := cats[*g.CategoryID]; ok {
				return true
			}
		}
		if g.BankAccountID != nil {
			if _, ok := accts[*g.BankAccountID]; ok {
				return true
			}
		}
		return false
	})
}

func (r *repo) selectGoals(keep func(domain.Goal) bool) ([]domain.Goal, error) {
	var out []domain.Goal
	err := r.read(func(s *memState) error {
		for _, g := range s.goals {
			if keep(g) {
				out = append(out, g)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].StartDate.Equal(out[j].StartDate) {
				return out[i].StartDate.Before(out[j].StartDate)
			}
			return out[i].GoalID < out[j].GoalID
		})
		return nil
	})
	return out, err
}

func (r *repo) SaveBudget(ctx context.Context, budget domain.Budget) error {
	return r.write("SaveBudget", func(s *memState) error {
		if _, ok := s.budgets[budget.BudgetID]; ok {
			return fmt.Errorf("budget %s: %w", budget.BudgetID, apperrors.ErrDuplicate)
		}
		s.budgets[budget.BudgetID] = budget
		return nil
	})
}

func (r *repo) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	return r.write("UpdateBudget", func(s *memState) error {
		if _, ok := s.budgets[budget.BudgetID]; !ok {
			return apperrors.NewNotFoundError("budget " + budget.BudgetID)
		}
		s.budgets[budget.BudgetID] = budget
		return nil
	})
}

func (r *repo) DeleteBudget(ctx context.Context, budgetID string) error {
	return r.write("DeleteBudget", func(s *memState) error {
		if _, ok := s.budgets[budgetID]; !ok {
			return apperrors.NewNotFoundError("budget " + budgetID)
		}
		delete(s.budgets, budgetID)
		return nil
	})
}

func (r *repo) UpdateBudgetProgress(ctx context.Context, budgetID string, current decimal.Decimal, completed bool, updatedAt time.Time) error {
	return r.write("UpdateBudgetProgress", func(s *memState) error {
		b, ok := s.budgets[budgetID]
		if !ok {
			return apperrors.NewNotFoundError("budget " + budgetID)
		}
		b.CurrentAmount = current
		b.IsCompleted = completed
		b.LastUpdatedAt = updatedAt
		s.budgets[budgetID] = b
		return nil
	})
}

func (r *repo) SaveGoal(ctx context.Context, goal domain.Goal) error {
	return r.write("SaveGoal", func(s *memState) error {
		if _, ok := s.goals[goal.GoalID]; ok {
			return fmt.Errorf("goal %s: %w", goal.GoalID, apperrors.ErrDuplicate)
		}
		s.goals[goal.GoalID] = goal
		return nil
	})
}

func (r *repo) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	return r.write("UpdateGoal", func(s *memState) error {
		if _, ok := s.goals[goal.GoalID]; !ok {
			return apperrors.NewNotFoundError("goal " + goal.GoalID)
		}
		s.goals[goal.GoalID] = goal
		return nil
	})
}

func (r *repo) DeleteGoal(ctx context.Context, goalID string) error {
	return r.write("DeleteGoal", func(s *memState) error {
		if _, ok := s.goals[goalID]; !ok {
			return apperrors.NewNotFoundError("goal " + goalID)
		}
		delete(s.goals, goalID)
		return nil
	})
}

func (r *repo) UpdateGoalProgress(ctx context.Context, goalID string, current decimal.Decimal, completed bool, updatedAt time.Time) error {
	return r.write("UpdateGoalProgress", func(s *memState) error {
		g, ok := s.goals[goalID]
		if !ok {
			return apperrors.NewNotFoundError("goal " + goalID)
		}
		g.CurrentAmount = current
		g.IsCompleted = completed
		g.LastUpdatedAt = updatedAt
		s.goals[goalID] = g
		return nil
	})
}
