package mapping

import (
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/models"
)

// ToModelLinkedAccount converts a domain LinkedAccount to a model LinkedAccount
func ToModelLinkedAccount(d domain.LinkedAccount) models.LinkedAccount {
	return models.LinkedAccount{
		LinkedAccountID: d.LinkedAccountID,
		ExternalItemID:  d.ExternalItemID,
		UserID:          d.UserID,
		AccessToken:     d.AccessToken,
		Cursor:          d.Cursor,
		InstitutionID:   d.InstitutionID,
		BankName:        d.BankName,
		Logo:            d.Logo,
		URL:             d.URL,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLinkedAccount converts a model LinkedAccount to a domain LinkedAccount
func ToDomainLinkedAccount(m models.LinkedAccount) domain.LinkedAccount {
	return domain.LinkedAccount{
		LinkedAccountID: m.LinkedAccountID,
		ExternalItemID:  m.ExternalItemID,
		UserID:          m.UserID,
		AccessToken:     m.AccessToken,
		Cursor:          m.Cursor,
		InstitutionID:   m.InstitutionID,
		BankName:        m.BankName,
		Logo:            m.Logo,
		URL:             m.URL,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelBankAccount converts a domain BankAccount to a model BankAccount
func ToModelBankAccount(d domain.BankAccount) models.BankAccount {
	return models.BankAccount(d)
}

// ToDomainBankAccount converts a model BankAccount to a domain BankAccount
func ToDomainBankAccount(m models.BankAccount) domain.BankAccount {
	return domain.BankAccount(m)
}

// ToDomainBankAccountSlice converts a slice of model BankAccounts to domain BankAccounts
func ToDomainBankAccountSlice(ms []models.BankAccount) []domain.BankAccount {
	ds := make([]domain.BankAccount, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBankAccount(m)
	}
	return ds
}
