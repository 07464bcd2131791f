package services

import (
	"context"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/dto"
)

// CategorySvcFacade defines category operations
type CategorySvcFacade interface {
	CreateCategory(ctx context.Context, identity domain.Identity, req dto.CreateCategoryRequest) (*domain.Category, error)
	ListCategories(ctx context.Context, identity domain.Identity) ([]domain.Category, error)

	// DeleteCategory removes the category, uncategorizes its transactions and
	// refreshes every budget and goal that depended on it.
	DeleteCategory(ctx context.Context, identity domain.Identity, categoryID string) error
}
