package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
)

// AggregateRecalculator derives budget and goal figures from the stored
// transactions. The figures are a pure function of storage state, so running
// it twice, or in any order, converges on the same values.
type AggregateRecalculator struct {
	BaseService
	now func() time.Time
}

// NewAggregateRecalculator creates an AggregateRecalculator.
func NewAggregateRecalculator() *AggregateRecalculator {
	return &AggregateRecalculator{now: time.Now}
}

// Recompute refreshes every budget and goal that depends on the touched
// categories or bank accounts. Uncategorized budgets track all of a user's
// transactions and are refreshed whenever anything was touched.
func (r *AggregateRecalculator) Recompute(ctx context.Context, store portsrepo.LedgerTxStore, touched domain.TouchedSet) (*domain.RecomputeResult, error) {
	result := &domain.RecomputeResult{}
	if touched.IsEmpty() {
		return result, nil
	}

	budgets, err := store.Budgets().ListBudgetsByCategories(ctx, touched.UserID, touched.CategoryIDs, true)
	if err != nil {
		return nil, fmt.Errorf("listing budgets to recompute: %w", err)
	}
	categoryTypes, err := r.categoryTypes(ctx, store, budgets)
	if err != nil {
		return nil, err
	}
	for _, b := range budgets {
		changed, err := r.refreshBudget(ctx, store, &b, categoryTypes)
		if err != nil {
			return nil, err
		}
		if changed {
			result.BudgetsUpdated++
		}
	}

	goals, err := store.Budgets().ListGoalsByTargets(ctx, touched.UserID, touched.CategoryIDs, touched.AccountIDs)
	if err != nil {
		return nil, fmt.Errorf("listing goals to recompute: %w", err)
	}
	for _, g := range goals {
		changed, err := r.RefreshGoal(ctx, store, &g)
		if err != nil {
			return nil, err
		}
		if changed {
			result.GoalsUpdated++
		}
	}
	return result, nil
}

// RefreshBudget recomputes a single budget in place and persists it if its
// figures changed.
func (r *AggregateRecalculator) RefreshBudget(ctx context.Context, store portsrepo.LedgerTxStore, b *domain.Budget) (bool, error) {
	types, err := r.categoryTypes(ctx, store, []domain.Budget{*b})
	if err != nil {
		return false, err
	}
	return r.refreshBudget(ctx, store, b, types)
}

func (r *AggregateRecalculator) refreshBudget(ctx context.Context, store portsrepo.LedgerTxStore, b *domain.Budget, types map[string]domain.CategoryType) (bool, error) {
	sum, err := store.Transactions().SumTransactions(ctx, domain.BudgetFilter(*b))
	if err != nil {
		return false, fmt.Errorf("summing transactions for budget %s: %w", b.BudgetID, err)
	}

	categoryType := domain.CategoryExpense
	if b.CategoryID != nil {
		if t, ok := types[*b.CategoryID]; ok {
			categoryType = t
		}
	}
	completed := domain.BudgetCompleted(sum, b.TargetAmount, categoryType)
	if sum.Equal(b.CurrentAmount) && completed == b.IsCompleted {
		return false, nil
	}

	now := r.now().UTC()
	if err := store.Budgets().UpdateBudgetProgress(ctx, b.BudgetID, sum, completed, now); err != nil {
		return false, fmt.Errorf("updating budget %s: %w", b.BudgetID, err)
	}
	b.CurrentAmount, b.IsCompleted, b.LastUpdatedAt = sum, completed, now
	return true, nil
}

// RefreshGoal recomputes a single goal in place and persists it if its
// figures changed. Goals tracking neither a category nor a bank account are
// left alone.
func (r *AggregateRecalculator) RefreshGoal(ctx context.Context, store portsrepo.LedgerTxStore, g *domain.Goal) (bool, error) {
	if !g.IsTracked() {
		return false, nil
	}
	sum, err := store.Transactions().SumTransactions(ctx, domain.GoalFilter(*g))
	if err != nil {
		return false, fmt.Errorf("summing transactions for goal %s: %w", g.GoalID, err)
	}

	completed := domain.GoalCompleted(sum, g.TargetAmount)
	if sum.Equal(g.CurrentAmount) && completed == g.IsCompleted {
		return false, nil
	}

	now := r.now().UTC()
	if err := store.Budgets().UpdateGoalProgress(ctx, g.GoalID, sum, completed, now); err != nil {
		return false, fmt.Errorf("updating goal %s: %w", g.GoalID, err)
	}
	g.CurrentAmount, g.IsCompleted, g.LastUpdatedAt = sum, completed, now
	return true, nil
}

func (r *AggregateRecalculator) categoryTypes(ctx context.Context, store portsrepo.LedgerTxStore, budgets []domain.Budget) (map[string]domain.CategoryType, error) {
	ids := make([]string, 0, len(budgets))
	for _, b := range budgets {
		if b.CategoryID != nil {
			ids = append(ids, *b.CategoryID)
		}
	}
	types := make(map[string]domain.CategoryType, len(ids))
	if len(ids) == 0 {
		return types, nil
	}
	categories, err := store.Categories().FindCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading budget categories: %w", err)
	}
	for id, c := range categories {
		types[id] = c.Type
	}
	return types, nil
}
