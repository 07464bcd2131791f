package mapping

import (
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID: d.TransactionID,
		ExternalID:    d.ExternalID,
		UserID:        d.UserID,
		BankAccountID: d.BankAccountID,
		CategoryID:    d.CategoryID,
		Amount:        d.Amount,
		Date:          d.Date,
		Name:          d.Name,
		RemovedAt:     d.RemovedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		ExternalID:    m.ExternalID,
		UserID:        m.UserID,
		BankAccountID: m.BankAccountID,
		CategoryID:    m.CategoryID,
		CategoryName:  m.CategoryName,
		Amount:        m.Amount,
		Date:          m.Date,
		Name:          m.Name,
		RemovedAt:     m.RemovedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
