package dto

import (
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
)

// ExchangePublicTokenRequest carries the short-lived token returned by the bank link flow.
type ExchangePublicTokenRequest struct {
	PublicToken string `json:"publicToken" binding:"required"`
}

// UpdateLinkedAccountRequest toggles syncing for a linked account.
type UpdateLinkedAccountRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// ListLinkedAccountsParams defines query parameters for listing linked accounts.
type ListLinkedAccountsParams struct {
	Name   string `form:"name"`
	Status string `form:"status,default=all" binding:"omitempty,oneof=active inactive all"`
}

// BankAccountResponse defines the data returned for a bank account.
type BankAccountResponse struct {
	BankAccountID string `json:"bankAccountID"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Mask          string `json:"mask"`
}

// LinkedAccountResponse defines the data returned for a linked account.
type LinkedAccountResponse struct {
	LinkedAccountID string                `json:"linkedAccountID"`
	InstitutionID   string                `json:"institutionID"`
	BankName        string                `json:"bankName"`
	Logo            string                `json:"logo"`
	URL             string                `json:"url"`
	IsActive        bool                  `json:"isActive"`
	Synced          bool                  `json:"synced"` // false until the first page commits
	BankAccounts    []BankAccountResponse `json:"bankAccounts,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
}

// LinkedAccountSummaryResponse is one entry of the linked account listing.
type LinkedAccountSummaryResponse struct {
	LinkedAccountID string `json:"linkedAccountID"`
	BankName        string `json:"bankName"`
	Logo            string `json:"logo"`
	URL             string `json:"url"`
	AccountsCount   int    `json:"accountsCount"`
	IsActive        bool   `json:"isActive"`
}

// ToLinkedAccountResponse converts a domain.LinkedAccount and its bank accounts to a response.
func ToLinkedAccountResponse(acc *domain.LinkedAccount, bankAccounts []domain.BankAccount) LinkedAccountResponse {
	res := LinkedAccountResponse{
		LinkedAccountID: acc.LinkedAccountID,
		InstitutionID:   acc.InstitutionID,
		BankName:        acc.BankName,
		Logo:            acc.Logo,
		URL:             acc.URL,
		IsActive:        acc.IsActive,
		Synced:          acc.Cursor != nil,
		CreatedAt:       acc.CreatedAt,
		LastUpdatedAt:   acc.LastUpdatedAt,
	}
	for _, ba := range bankAccounts {
		res.BankAccounts = append(res.BankAccounts, BankAccountResponse{
			BankAccountID: ba.BankAccountID,
			Name:          ba.Name,
			Type:          ba.Type,
			Mask:          ba.Mask,
		})
	}
	return res
}

// ToLinkedAccountSummaryResponses converts listing summaries to responses.
func ToLinkedAccountSummaryResponses(summaries []domain.LinkedAccountSummary) []LinkedAccountSummaryResponse {
	res := make([]LinkedAccountSummaryResponse, len(summaries))
	for i, s := range summaries {
		res[i] = LinkedAccountSummaryResponse{
			LinkedAccountID: s.LinkedAccountID,
			BankName:        s.BankName,
			Logo:            s.Logo,
			URL:             s.URL,
			AccountsCount:   s.AccountsCount,
			IsActive:        s.IsActive,
		}
	}
	return res
}
