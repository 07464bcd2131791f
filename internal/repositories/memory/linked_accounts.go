package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
)

func (r *repo) FindLinkedAccountByID(ctx context.Context, linkedAccountID string) (*domain.LinkedAccount, error) {
	var out *domain.LinkedAccount
	err := r.read(func(s *memState) error {
		acc, ok := s.linkedAccounts[linkedAccountID]
		if !ok {
			return apperrors.NewNotFoundError("linked account " + linkedAccountID)
		}
		out = &acc
		return nil
	})
	return out, err
}

func (r *repo) FindLinkedAccountByExternalItemID(ctx context.Context, externalItemID string) (*domain.LinkedAccount, error) {
	var out *domain.LinkedAccount
	err := r.read(func(s *memState) error {
		for _, acc := range s.linkedAccounts {
			if acc.ExternalItemID == externalItemID {
				out = &acc
				return nil
			}
		}
		return apperrors.NewNotFoundError("linked account for item " + externalItemID)
	})
	return out, err
}

func (r *repo) ListLinkedAccounts(ctx context.Context, filter domain.LinkedAccountFilter) ([]domain.LinkedAccountSummary, error) {
	var out []domain.LinkedAccountSummary
	err := r.read(func(s *memState) error {
		counts := make(map[string]int)
		for _, ba := range s.bankAccounts {
			counts[ba.LinkedAccountID]++
		}
		matched := make([]domain.LinkedAccount, 0)
		for _, acc := range s.linkedAccounts {
			if filter.Matches(acc) {
				matched = append(matched, acc)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.Before(matched[j].CreatedAt)
			}
			return matched[i].LinkedAccountID < matched[j].LinkedAccountID
		})
		out = make([]domain.LinkedAccountSummary, 0, len(matched))
		for _, acc := range matched {
			out = append(out, domain.LinkedAccountSummary{
				LinkedAccountID: acc.LinkedAccountID,
				ExternalItemID:  acc.ExternalItemID,
				BankName:        acc.BankName,
				Logo:            acc.Logo,
				URL:             acc.URL,
				AccountsCount:   counts[acc.LinkedAccountID],
				IsActive:        acc.IsActive,
				Cursor:          acc.Cursor,
			})
		}
		return nil
	})
	return out, err
}

func (r *repo) ListActiveLinkedAccountIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.read(func(s *memState) error {
		for id, acc := range s.linkedAccounts {
			if acc.IsActive {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		return nil
	})
	return ids, err
}

func (r *repo) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	var out *domain.BankAccount
	err := r.read(func(s *memState) error {
		ba, ok := s.bankAccounts[bankAccountID]
		if !ok {
			return apperrors.NewNotFoundError("bank account " + bankAccountID)
		}
		out = &ba
		return nil
	})
	return out, err
}

func (r *repo) ListBankAccounts(ctx context.Context, linkedAccountID string) ([]domain.BankAccount, error) {
	var out []domain.BankAccount
	err := r.read(func(s *memState) error {
		for _, ba := range s.bankAccounts {
			if ba.LinkedAccountID == linkedAccountID {
				out = append(out, ba)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

func (r *repo) FindBankAccountsByExternalIDs(ctx context.Context, externalIDs []string) (map[string]domain.BankAccount, error) {
	out := make(map[string]domain.BankAccount)
	wanted := toSet(externalIDs)
	err := r.read(func(s *memState) error {
		for _, ba := range s.bankAccounts {
			if _, ok := wanted[ba.ExternalID]; ok {
				out[ba.ExternalID] = ba
			}
		}
		return nil
	})
	return out, err
}

func (r *repo) SaveLinkedAccount(ctx context.Context, account domain.LinkedAccount) error {
	return r.write("SaveLinkedAccount", func(s *memState) error {
		for _, existing := range s.linkedAccounts {
			if existing.ExternalItemID == account.ExternalItemID {
				return fmt.Errorf("linked account for item %s: %w", account.ExternalItemID, apperrors.ErrDuplicate)
			}
		}
		if _, ok := s.linkedAccounts[account.LinkedAccountID]; ok {
			return fmt.Errorf("linked account %s: %w", account.LinkedAccountID, apperrors.ErrDuplicate)
		}
		s.linkedAccounts[account.LinkedAccountID] = account
		return nil
	})
}

func (r *repo) SaveBankAccounts(ctx context.Context, accounts []domain.BankAccount) error {
	return r.write("SaveBankAccounts", func(s *memState) error {
		known := make(map[string]struct{}, len(s.bankAccounts))
		for _, ba := range s.bankAccounts {
			known[ba.ExternalID] = struct{}{}
		}
		for _, ba := range accounts {
			if _, ok := known[ba.ExternalID]; ok {
				continue
			}
			if _, ok := s.linkedAccounts[ba.LinkedAccountID]; !ok {
				return apperrors.NewNotFoundError("linked account " + ba.LinkedAccountID)
			}
			s.bankAccounts[ba.BankAccountID] = ba
			known[ba.ExternalID] = struct{}{}
		}
		return nil
	})
}

func (r *repo) SetLinkedAccountActive(ctx context.Context, linkedAccountID string, active bool, updatedAt time.Time) error {
	return r.write("SetLinkedAccountActive", func(s *memState) error {
		acc, ok := s.linkedAccounts[linkedAccountID]
		if !ok {
			return apperrors.NewNotFoundError("linked account " + linkedAccountID)
		}
		acc.IsActive = active
		acc.LastUpdatedAt = updatedAt
		s.linkedAccounts[linkedAccountID] = acc
		return nil
	})
}

func (r *repo) AdvanceCursor(ctx context.Context, linkedAccountID string, expected *string, next string, updatedAt time.Time) error {
	return r.write("AdvanceCursor", func(s *memState) error {
		acc, ok := s.linkedAccounts[linkedAccountID]
		if !ok {
			return apperrors.NewNotFoundError("linked account " + linkedAccountID)
		}
		if acc.Cursor != nil && *acc.Cursor == next {
			return nil // this advance already committed
		}
		if !sameCursor(acc.Cursor, expected) {
			return fmt.Errorf("cursor of linked account %s moved: %w", linkedAccountID, apperrors.ErrStorageConflict)
		}
		acc.Cursor = &next
		acc.LastUpdatedAt = updatedAt
		s.linkedAccounts[linkedAccountID] = acc
		return nil
	})
}

func sameCursor(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
