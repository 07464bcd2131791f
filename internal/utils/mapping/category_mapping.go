package mapping

import (
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/models"
)

// ToModelCategory converts a domain Category to a model Category
func ToModelCategory(d domain.Category) models.Category {
	return models.Category{
		CategoryID:  d.CategoryID,
		UserID:      d.UserID,
		Name:        d.Name,
		Icon:        d.Icon,
		Type:        string(d.Type),
		ExternalKey: d.ExternalKey,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCategory converts a model Category to a domain Category
func ToDomainCategory(m models.Category) domain.Category {
	return domain.Category{
		CategoryID:  m.CategoryID,
		UserID:      m.UserID,
		Name:        m.Name,
		Icon:        m.Icon,
		Type:        domain.CategoryType(m.Type),
		ExternalKey: m.ExternalKey,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
