package dto

import (
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a category.
type CreateCategoryRequest struct {
	Name        string              `json:"name" binding:"required"`
	Icon        string              `json:"icon"`
	Type        domain.CategoryType `json:"type" binding:"required,oneof=income expense"`
	ExternalKey *string             `json:"externalKey"` // provider category to absorb
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID  string              `json:"categoryID"`
	Name        string              `json:"name"`
	Icon        string              `json:"icon"`
	Type        domain.CategoryType `json:"type"`
	ExternalKey *string             `json:"externalKey,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// ToCategoryResponse converts a domain.Category to CategoryResponse DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID:  c.CategoryID,
		Name:        c.Name,
		Icon:        c.Icon,
		Type:        c.Type,
		ExternalKey: c.ExternalKey,
		CreatedAt:   c.CreatedAt,
	}
}

// ToCategoryResponses converts a slice of domain.Category.
func ToCategoryResponses(categories []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i := range categories {
		res[i] = ToCategoryResponse(&categories[i])
	}
	return res
}
