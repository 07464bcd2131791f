package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	"github.com/SscSPs/budget_sync_app/internal/models"
	"github.com/SscSPs/budget_sync_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const budgetColumns = `budget_id, user_id, title, description, target_amount, current_amount,
	start_date, end_date, category_id, is_completed, created_at, last_updated_at`

const goalColumns = `goal_id, user_id, title, description, target_amount, current_amount,
	start_date, end_date, category_id, bank_account_id, is_completed, created_at, last_updated_at`

type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(db querier) *PgxBudgetRepository {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

func (r *PgxBudgetRepository) queryBudgets(ctx context.Context, where string, args ...any) ([]domain.Budget, error) {
	rows, err := r.db.Query(ctx, `SELECT `+budgetColumns+` FROM budgets `+where+` ORDER BY start_date, budget_id;`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Budget])
	if err != nil {
		return nil, fmt.Errorf("failed to scan budgets: %w", err)
	}
	out := make([]domain.Budget, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainBudget(m)
	}
	return out, nil
}

func (r *PgxBudgetRepository) queryGoals(ctx context.Context, where string, args ...any) ([]domain.Goal, error) {
	rows, err := r.db.Query(ctx, `SELECT `+goalColumns+` FROM goals `+where+` ORDER BY start_date, goal_id;`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Goal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan goals: %w", err)
	}
	out := make([]domain.Goal, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainGoal(m)
	}
	return out, nil
}

func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	budgets, err := r.queryBudgets(ctx, "WHERE budget_id = $1", budgetID)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, apperrors.NewNotFoundError("budget " + budgetID)
	}
	return &budgets[0], nil
}

func (r *PgxBudgetRepository) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	return r.queryBudgets(ctx, "WHERE user_id = $1", userID)
}

func (r *PgxBudgetRepository) ListBudgetsByCategories(ctx context.Context, userID string, categoryIDs []string, includeOverall bool) ([]domain.Budget, error) {
	return r.queryBudgets(ctx, "WHERE user_id = $1 AND (category_id = ANY($2) OR ($3 AND category_id IS NULL))",
		userID, categoryIDs, includeOverall)
}

func (r *PgxBudgetRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	goals, err := r.queryGoals(ctx, "WHERE goal_id = $1", goalID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, apperrors.NewNotFoundError("goal " + goalID)
	}
	return &goals[0], nil
}

func (r *PgxBudgetRepository) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	return r.queryGoals(ctx, "WHERE user_id = $1", userID)
}

func (r *PgxBudgetRepository) ListGoalsByTargets(ctx context.Context, userID string, categoryIDs, bankAccountIDs []string) ([]domain.Goal, error) {
	return r.queryGoals(ctx, "WHERE user_id = $1 AND (category_id = ANY($2) OR bank_account_id = ANY($3))",
		userID, categoryIDs, bankAccountIDs)
}

func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	_, err := r.db.Exec(ctx, `
		INSERT INTO budgets (`+budgetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		m.BudgetID, m.UserID, m.Title, m.Description, m.TargetAmount, m.CurrentAmount,
		m.StartDate, m.EndDate, m.CategoryID, m.IsCompleted, m.CreatedAt, m.LastUpdatedAt,
	)
	if err != nil {
		if code, _ := pgError(err); code == pgUniqueViolation {
			return fmt.Errorf("budget %s: %w", m.BudgetID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save budget %s: %w", m.BudgetID, err)
	}
	return nil
}

func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	return r.expectOne(ctx, "budget "+m.BudgetID, `
		UPDATE budgets
		SET title = $2, description = $3, target_amount = $4, current_amount = $5, start_date = $6,
		    end_date = $7, category_id = $8, is_completed = $9, last_updated_at = $10
		WHERE budget_id = $1;`,
		m.BudgetID, m.Title, m.Description, m.TargetAmount, m.CurrentAmount,
		m.StartDate, m.EndDate, m.CategoryID, m.IsCompleted, m.LastUpdatedAt)
}

func (r *PgxBudgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	return r.expectOne(ctx, "budget "+budgetID, `DELETE FROM budgets WHERE budget_id = $1;`, budgetID)
}

func (r *PgxBudgetRepository) UpdateBudgetProgress(ctx context.Context, budgetID string, current decimal.Decimal, completed bool, updatedAt time.Time) error {
	return r.expectOne(ctx, "budget "+budgetID,
		`UPDATE budgets SET current_amount = $2, is_completed = $3, last_updated_at = $4 WHERE budget_id = $1;`,
		budgetID, current, completed, updatedAt)
}

func (r *PgxBudgetRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	m := mapping.ToModelGoal(goal)
	_, err := r.db.Exec(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		m.GoalID, m.UserID, m.Title, m.Description, m.TargetAmount, m.CurrentAmount,
		m.StartDate, m.EndDate, m.CategoryID, m.BankAccountID, m.IsCompleted, m.CreatedAt, m.LastUpdatedAt,
	)
	if err != nil {
		if code, _ := pgError(err); code == pgUniqueViolation {
			return fmt.Errorf("goal %s: %w", m.GoalID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save goal %s: %w", m.GoalID, err)
	}
	return nil
}

func (r *PgxBudgetRepository) UpdateGoal(ctx context.Context, goal domain.Goal) error {
	m := mapping.ToModelGoal(goal)
	return r.expectOne(ctx, "goal "+m.GoalID, `
		UPDATE goals
		SET title = $2, description = $3, target_amount = $4, current_amount = $5, start_date = $6,
		    end_date = $7, category_id = $8, bank_account_id = $9, is_completed = $10, last_updated_at = $11
		WHERE goal_id = $1;`,
		m.GoalID, m.Title, m.Description, m.TargetAmount, m.CurrentAmount,
		m.StartDate, m.EndDate, m.CategoryID, m.BankAccountID, m.IsCompleted, m.LastUpdatedAt)
}

func (r *PgxBudgetRepository) DeleteGoal(ctx context.Context, goalID string) error {
	return r.expectOne(ctx, "goal "+goalID, `DELETE FROM goals WHERE goal_id = $1;`, goalID)
}

func (r *PgxBudgetRepository) UpdateGoalProgress(ctx context.Context, goalID string, current decimal.Decimal, completed bool, updatedAt time.Time) error {
	return r.expectOne(ctx, "goal "+goalID,
		`UPDATE goals SET current_amount = $2, is_completed = $3, last_updated_at = $4 WHERE goal_id = $1;`,
		goalID, current, completed, updatedAt)
}

// expectOne runs a single-row statement and reports a missing row as not found.
func (r *PgxBudgetRepository) expectOne(ctx context.Context, resource, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", resource, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(resource)
	}
	return nil
}
