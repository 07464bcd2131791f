package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/google/uuid"
)

type categoryService struct {
	BaseService
	repo         portsrepo.CategoryRepositoryFacade
	uow          portsrepo.UnitOfWork
	recalculator *AggregateRecalculator
	notifier     portssvc.ChangeNotifier
	now          func() time.Time
}

// NewCategoryService creates a category service.
func NewCategoryService(repos portsrepo.RepositoryProvider, recalculator *AggregateRecalculator, notifier portssvc.ChangeNotifier) portssvc.CategorySvcFacade {
	return &categoryService{
		repo:         repos.CategoryRepo,
		uow:          repos.UnitOfWork,
		recalculator: recalculator,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, identity domain.Identity, req dto.CreateCategoryRequest) (*domain.Category, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name is required")
	}
	if req.Type != domain.CategoryIncome && req.Type != domain.CategoryExpense {
		return nil, apperrors.NewValidationError("category type must be income or expense")
	}

	now := s.now().UTC()
	category := domain.Category{
		CategoryID:  uuid.NewString(),
		UserID:      identity.UserID,
		Name:        name,
		Icon:        req.Icon,
		Type:        req.Type,
		ExternalKey: req.ExternalKey,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := s.repo.SaveCategory(ctx, category); err != nil {
		s.LogError(ctx, err, "Failed to save category")
		return nil, err
	}
	return &category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, identity domain.Identity) ([]domain.Category, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, identity.UserID)
}

// DeleteCategory implements portssvc.CategorySvcFacade. Budgets on the
// category become overall budgets; goals lose the category filter.
func (s *categoryService) DeleteCategory(ctx context.Context, identity domain.Identity, categoryID string) error {
	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if err := s.AuthorizeOwner(ctx, identity, category.UserID, "category "+categoryID); err != nil {
		return err
	}

	err = s.uow.RunInTx(ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		affected, err := store.Transactions().FindAllTransactions(ctx, domain.TransactionFilter{
			UserID:         category.UserID,
			CategoryID:     &categoryID,
			IncludeRemoved: true,
		})
		if err != nil {
			return err
		}
		goals, err := store.Budgets().ListGoalsByTargets(ctx, category.UserID, []string{categoryID}, nil)
		if err != nil {
			return err
		}

		if err := store.Categories().DeleteCategory(ctx, categoryID); err != nil {
			return err
		}

		accounts := make(map[string]struct{})
		for _, txn := range affected {
			if txn.BankAccountID != nil {
				accounts[*txn.BankAccountID] = struct{}{}
			}
		}
		touched := domain.NewTouchedSet(category.UserID, nil, accounts, true)
		if _, err := s.recalculator.Recompute(ctx, store, touched); err != nil {
			return fmt.Errorf("recalculating aggregates: %w", err)
		}
		for _, g := range goals {
			g.CategoryID = nil
			if _, err := s.recalculator.RefreshGoal(ctx, store, &g); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete category", slog.String("category_id", categoryID))
		return err
	}

	if err := s.notifier.NotifyLedgerChanged(ctx, category.UserID); err != nil {
		s.LogError(ctx, err, "Failed to notify ledger change")
	}
	return nil
}
