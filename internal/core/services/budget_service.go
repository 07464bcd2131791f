package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// budgetService manages budgets and goals. Current amounts are never taken
// from clients; they are recomputed inside the same unit of work as every write.
type budgetService struct {
	BaseService
	ownership    ownershipChecker
	repo         portsrepo.BudgetRepositoryFacade
	uow          portsrepo.UnitOfWork
	recalculator *AggregateRecalculator
	now          func() time.Time
}

// NewBudgetService creates the budget and goal service.
func NewBudgetService(repos portsrepo.RepositoryProvider, recalculator *AggregateRecalculator) portssvc.BudgetSvcFacade {
	return &budgetService{
		ownership:    ownershipChecker{categories: repos.CategoryRepo, linkedAccounts: repos.LinkedAccountRepo},
		repo:         repos.BudgetRepo,
		uow:          repos.UnitOfWork,
		recalculator: recalculator,
		now:          time.Now,
	}
}

func validateTarget(target decimal.Decimal) error {
	if !target.IsPositive() {
		return apperrors.NewValidationError("target amount must be positive")
	}
	return nil
}

func (s *budgetService) CreateBudget(ctx context.Context, identity domain.Identity, req dto.CreateBudgetRequest) (*domain.Budget, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewValidationError("budget title is required")
	}
	if err := validateTarget(req.TargetAmount); err != nil {
		return nil, err
	}
	if err := validateWindow(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := s.ownership.checkCategory(ctx, identity, req.CategoryID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	budget := domain.Budget{
		BudgetID:      uuid.NewString(),
		UserID:        identity.UserID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: decimal.Zero,
		StartDate:     domain.CalendarDay(req.StartDate),
		EndDate:       domain.CalendarDay(req.EndDate),
		CategoryID:    req.CategoryID,
		AuditFields:   domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	err := s.uow.RunInTx(ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		if err := store.Budgets().SaveBudget(ctx, budget); err != nil {
			return err
		}
		_, err := s.recalculator.RefreshBudget(ctx, store, &budget)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create budget")
		return nil, err
	}
	s.LogInfo(ctx, "Budget created", slog.String("budget_id", budget.BudgetID))
	return &budget, nil
}

func (s *budgetService) UpdateBudget(ctx context.Context, identity domain.Identity, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error) {
	budget, err := s.repo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeOwner(ctx, identity, budget.UserID, "budget "+budgetID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperrors.NewValidationError("budget title cannot be empty")
		}
		budget.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		budget.Description = *req.Description
	}
	if req.TargetAmount != nil {
		if err := validateTarget(*req.TargetAmount); err != nil {
			return nil, err
		}
		budget.TargetAmount = *req.TargetAmount
	}
	if req.StartDate != nil {
		budget.StartDate = domain.CalendarDay(*req.StartDate)
	}
	if req.EndDate != nil {
		budget.EndDate = domain.CalendarDay(*req.EndDate)
	}
	if err := validateWindow(budget.StartDate, budget.EndDate); err != nil {
		return nil, err
	}
	switch {
	case req.ClearCategory:
		budget.CategoryID = nil
	case req.CategoryID != nil:
		if err := s.ownership.checkCategory(ctx, identity, req.CategoryID); err != nil {
			return nil, err
		}
		budget.CategoryID = req.CategoryID
	}
	budget.LastUpdatedAt = s.now().UTC()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		if err := store.Budgets().UpdateBudget(ctx, *budget); err != nil {
			return err
		}
		_, err := s.recalculator.RefreshBudget(ctx, store, budget)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update budget", slog.String("budget_id", budgetID))
		return nil, err
	}
	return budget, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, identity domain.Identity) ([]domain.Budget, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, err
	}
	return s.repo.ListBudgets(ctx, identity.UserID)
}

func (s *budgetService) DeleteBudget(ctx context.Context, identity domain.Identity, budgetID string) error {
	budget, err := s.repo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return err
	}
	if err := s.AuthorizeOwner(ctx, identity, budget.UserID, "budget "+budgetID); err != nil {
		return err
	}
	return s.repo.DeleteBudget(ctx, budgetID)
}

func (s *budgetService) CreateGoal(ctx context.Context, identity domain.Identity, req dto.CreateGoalRequest) (*domain.Goal, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewValidationError("goal title is required")
	}
	if err := validateTarget(req.TargetAmount); err != nil {
		return nil, err
	}
	if err := validateWindow(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := s.ownership.checkCategory(ctx, identity, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ownership.checkBankAccount(ctx, identity, req.BankAccountID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	goal := domain.Goal{
		GoalID:        uuid.NewString(),
		UserID:        identity.UserID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: decimal.Zero,
		StartDate:     domain.CalendarDay(req.StartDate),
		EndDate:       domain.CalendarDay(req.EndDate),
		CategoryID:    req.CategoryID,
		BankAccountID: req.BankAccountID,
		AuditFields:   domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	err := s.uow.RunInTx(ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		if err := store.Budgets().SaveGoal(ctx, goal); err != nil {
			return err
		}
		_, err := s.recalculator.RefreshGoal(ctx, store, &goal)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create goal")
		return nil, err
	}
	return &goal, nil
}

func (s *budgetService) UpdateGoal(ctx context.Context, identity domain.Identity, goalID string, req dto.UpdateGoalRequest) (*domain.Goal, error) {
	goal, err := s.repo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeOwner(ctx, identity, goal.UserID, "goal "+goalID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperrors.NewValidationError("goal title cannot be empty")
		}
		goal.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.TargetAmount != nil {
		if err := validateTarget(*req.TargetAmount); err != nil {
			return nil, err
		}
		goal.TargetAmount = *req.TargetAmount
	}
	if req.StartDate != nil {
		goal.StartDate = domain.CalendarDay(*req.StartDate)
	}
	if req.EndDate != nil {
		goal.EndDate = domain.CalendarDay(*req.EndDate)
	}
	if err := validateWindow(goal.StartDate, goal.EndDate); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if err := s.ownership.checkCategory(ctx, identity, req.CategoryID); err != nil {
			return nil, err
		}
		goal.CategoryID = req.CategoryID
	}
	if req.BankAccountID != nil {
		if err := s.ownership.checkBankAccount(ctx, identity, req.BankAccountID); err != nil {
			return nil, err
		}
		goal.BankAccountID = req.BankAccountID
	}
	goal.LastUpdatedAt = s.now().UTC()

	err = s.uow.RunInTx(ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		if err := store.Budgets().UpdateGoal(ctx, *goal); err != nil {
			return err
		}
		_, err := s.recalculator.RefreshGoal(ctx, store, goal)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update goal", slog.String("goal_id", goalID))
		return nil, err
	}
	return goal, nil
}

func (s *budgetService) ListGoals(ctx context.Context, identity domain.Identity) ([]domain.Goal, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, err
	}
	return s.repo.ListGoals(ctx, identity.UserID)
}

func (s *budgetService) DeleteGoal(ctx context.Context, identity domain.Identity, goalID string) error {
	goal, err := s.repo.FindGoalByID(ctx, goalID)
	if err != nil {
		return err
	}
	if err := s.AuthorizeOwner(ctx, identity, goal.UserID, "goal "+goalID); err != nil {
		return err
	}
	return s.repo.DeleteGoal(ctx, goalID)
}
