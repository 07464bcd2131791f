package dto

import (
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record a manual transaction.
type CreateTransactionRequest struct {
	Name          string          `json:"name" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"` // negative for money out
	Date          time.Time       `json:"date" binding:"required"`
	CategoryID    *string         `json:"categoryID"`
	BankAccountID *string         `json:"bankAccountID"`
}

// UpdateTransactionRequest defines the editable fields of a transaction.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateTransactionRequest struct {
	Name          *string          `json:"name"`
	Amount        *decimal.Decimal `json:"amount"`
	Date          *time.Time       `json:"date"`
	CategoryID    *string          `json:"categoryID"`
	ClearCategory bool             `json:"clearCategory"`
}

// DeleteTransactionsRequest lists the transactions to delete.
type DeleteTransactionsRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1,dive,required"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit         int        `form:"limit,default=20" binding:"omitempty,min=1,max=200"`
	NextToken     *string    `form:"nextToken"`
	CategoryID    *string    `form:"categoryID"`
	BankAccountID *string    `form:"bankAccountID"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Search        string     `form:"search"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	CategoryID    *string         `json:"categoryID,omitempty"`
	CategoryName  *string         `json:"categoryName,omitempty"`
	BankAccountID *string         `json:"bankAccountID,omitempty"`
	Synced        bool            `json:"synced"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ListTransactionsResponse is a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// DeleteTransactionsResponse reports how many transactions were removed.
type DeleteTransactionsResponse struct {
	Deleted int `json:"deleted"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		Name:          txn.Name,
		Amount:        txn.Amount,
		Date:          txn.Date,
		CategoryID:    txn.CategoryID,
		CategoryName:  txn.CategoryName,
		BankAccountID: txn.BankAccountID,
		Synced:        txn.ExternalID != nil,
		CreatedAt:     txn.CreatedAt,
		LastUpdatedAt: txn.LastUpdatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}
