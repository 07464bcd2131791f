package repositories

import (
	"context"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
)

// CategoryReader defines read operations for categories
type CategoryReader interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error)

	// FindCategoriesByExternalKeys maps provider category keys to a user's categories.
	FindCategoriesByExternalKeys(ctx context.Context, userID string, keys []string) (map[string]domain.Category, error)

	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
}

// CategoryWriter defines write operations for categories
type CategoryWriter interface {
	SaveCategory(ctx context.Context, category domain.Category) error

	// DeleteCategory removes a category and clears every transaction, budget
	// and goal reference to it.
	DeleteCategory(ctx context.Context, categoryID string) error
}

// CategoryRepositoryFacade combines all category repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
