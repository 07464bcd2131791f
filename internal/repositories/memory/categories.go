package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
)

func (r *repo) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	var out *domain.Category
	err := r.read(func(s *memState) error {
		c, ok := s.categories[categoryID]
		if !ok {
			return apperrors.NewNotFoundError("category " + categoryID)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *repo) FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error) {
	out := make(map[string]domain.Category)
	err := r.read(func(s *memState) error {
		for id := range toSet(categoryIDs) {
			if c, ok := s.categories[id]; ok {
				out[id] = c
			}
		}
		return nil
	})
	return out, err
}

func (r *repo) FindCategoriesByExternalKeys(ctx context.Context, userID string, keys []string) (map[string]domain.Category, error) {
	out := make(map[string]domain.Category)
	wanted := toSet(keys)
	err := r.read(func(s *memState) error {
		for _, c := range s.categories {
			if c.UserID != userID || c.ExternalKey == nil {
				continue
			}
			if _, ok := wanted[*c.ExternalKey]; ok {
				out[*c.ExternalKey] = c
			}
		}
		return nil
	})
	return out, err
}

func (r *repo) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	var out []domain.Category
	err := r.read(func(s *memState) error {
		for _, c := range s.categories {
			if c.UserID == userID {
				out = append(out, c)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].CategoryID < out[j].CategoryID
		})
		return nil
	})
	return out, err
}

func (r *repo) SaveCategory(ctx context.Context, category domain.Category) error {
	return r.write("SaveCategory", func(s *memState) error {
		if _, ok := s.categories[category.CategoryID]; ok {
			return fmt.Errorf("category %s: %w", category.CategoryID, apperrors.ErrDuplicate)
		}
		if category.ExternalKey != nil {
			for _, c := range s.categories {
				if c.UserID == category.UserID && c.ExternalKey != nil && *c.ExternalKey == *category.ExternalKey {
					return fmt.Errorf("category for provider key %s: %w", *category.ExternalKey, apperrors.ErrDuplicate)
				}
			}
		}
		s.categories[category.CategoryID] = category
		return nil
	})
}

func (r *repo) DeleteCategory(ctx context.Context, categoryID string) error {
	return r.write("DeleteCategory", func(s *memState) error {
		if _, ok := s.categories[categoryID]; !ok {
			return apperrors.NewNotFoundError("category " + categoryID)
		}
		delete(s.categories, categoryID)
		for id, txn := range s.transactions {
			if txn.CategoryID != nil && *txn.CategoryID == categoryID {
				txn.CategoryID = nil
				s.transactions[id] = txn
			}
		}
		for id, b := range s.budgets {
			if b.CategoryID != nil && *b.CategoryID == categoryID {
				b.CategoryID = nil
				s.budgets[id] = b
			}
		}
		for id, g := range s.goals {
			if g.CategoryID != nil && *g.CategoryID == categoryID {
				g.CategoryID = nil
				s.goals[id] = g
			}
		}
		return nil
	})
}
