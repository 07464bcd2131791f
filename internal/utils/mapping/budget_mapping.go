package mapping

import (
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/models"
)

// ToModelBudget converts a domain Budget to a model Budget
func ToModelBudget(d domain.Budget) models.Budget {
	return models.Budget{
		BudgetID:      d.BudgetID,
		UserID:        d.UserID,
		Title:         d.Title,
		Description:   d.Description,
		TargetAmount:  d.TargetAmount,
		CurrentAmount: d.CurrentAmount,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		CategoryID:    d.CategoryID,
		IsCompleted:   d.IsCompleted,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBudget converts a model Budget to a domain Budget
func ToDomainBudget(m models.Budget) domain.Budget {
	return domain.Budget{
		BudgetID:      m.BudgetID,
		UserID:        m.UserID,
		Title:         m.Title,
		Description:   m.Description,
		TargetAmount:  m.TargetAmount,
		CurrentAmount: m.CurrentAmount,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		CategoryID:    m.CategoryID,
		IsCompleted:   m.IsCompleted,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelGoal converts a domain Goal to a model Goal
func ToModelGoal(d domain.Goal) models.Goal {
	return models.Goal{
		GoalID:        d.GoalID,
		UserID:        d.UserID,
		Title:         d.Title,
		Description:   d.Description,
		TargetAmount:  d.TargetAmount,
		CurrentAmount: d.CurrentAmount,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		CategoryID:    d.CategoryID,
		BankAccountID: d.BankAccountID,
		IsCompleted:   d.IsCompleted,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGoal converts a model Goal to a domain Goal
func ToDomainGoal(m models.Goal) domain.Goal {
	return domain.Goal{
		GoalID:        m.GoalID,
		UserID:        m.UserID,
		Title:         m.Title,
		Description:   m.Description,
		TargetAmount:  m.TargetAmount,
		CurrentAmount: m.CurrentAmount,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		CategoryID:    m.CategoryID,
		BankAccountID: m.BankAccountID,
		IsCompleted:   m.IsCompleted,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
