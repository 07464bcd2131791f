package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	"github.com/SscSPs/budget_sync_app/internal/models"
	"github.com/SscSPs/budget_sync_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const categoryColumns = `category_id, user_id, name, icon, category_type, external_key, created_at, last_updated_at`

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(db querier) *PgxCategoryRepository {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

func (r *PgxCategoryRepository) query(ctx context.Context, where string, args ...any) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories `+where+`;`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Category])
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	out := make([]domain.Category, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainCategory(m)
	}
	return out, nil
}

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	cats, err := r.query(ctx, "WHERE category_id = $1", categoryID)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, apperrors.NewNotFoundError("category " + categoryID)
	}
	return &cats[0], nil
}

func (r *PgxCategoryRepository) FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error) {
	out := make(map[string]domain.Category)
	if len(categoryIDs) == 0 {
		return out, nil
	}
	cats, err := r.query(ctx, "WHERE category_id = ANY($1)", categoryIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		out[c.CategoryID] = c
	}
	return out, nil
}

func (r *PgxCategoryRepository) FindCategoriesByExternalKeys(ctx context.Context, userID string, keys []string) (map[string]domain.Category, error) {
	out := make(map[string]domain.Category)
	if len(keys) == 0 {
		return out, nil
	}
	cats, err := r.query(ctx, "WHERE user_id = $1 AND external_key = ANY($2)", userID, keys)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		out[*c.ExternalKey] = c
	}
	return out, nil
}

func (r *PgxCategoryRepository) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	return r.query(ctx, "WHERE user_id = $1 ORDER BY name, category_id", userID)
}

func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		m.CategoryID, m.UserID, m.Name, m.Icon, m.Type, m.ExternalKey, m.CreatedAt, m.LastUpdatedAt,
	)
	if err != nil {
		if code, _ := pgError(err); code == pgUniqueViolation {
			return fmt.Errorf("category %s: %w", m.Name, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save category %s: %w", m.CategoryID, err)
	}
	return nil
}

// DeleteCategory removes a category. The foreign keys on transactions,
// budgets and goals are ON DELETE SET NULL.
func (r *PgxCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", categoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("category " + categoryID)
	}
	return nil
}
