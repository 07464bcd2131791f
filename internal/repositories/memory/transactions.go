package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 20

func (r *repo) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := r.read(func(s *memState) error {
		txn, ok := s.transactions[transactionID]
		if !ok {
			return apperrors.NewNotFoundError("transaction " + transactionID)
		}
		txn.CategoryName = categoryName(s, txn.CategoryID)
		out = &txn
		return nil
	})
	return out, err
}

func (r *repo) FindTransactionsByIDs(ctx context.Context, transactionIDs []string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.read(func(s *memState) error {
		for id := range toSet(transactionIDs) {
			if txn, ok := s.transactions[id]; ok {
				out = append(out, txn)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
		return nil
	})
	return out, err
}

func (r *repo) FindTransactionsByExternalIDs(ctx context.Context, externalIDs []string) (map[string]domain.Transaction, error) {
	out := make(map[string]domain.Transaction)
	wanted := toSet(externalIDs)
	err := r.read(func(s *memState) error {
		for _, txn := range s.transactions {
			if txn.ExternalID == nil {
				continue
			}
			if _, ok := wanted[*txn.ExternalID]; ok {
				out[*txn.ExternalID] = txn
			}
		}
		return nil
	})
	return out, err
}

func (r *repo) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var after *pagination.Keyset
	if nextToken != nil && *nextToken != "" {
		k, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		after = &k
	}

	var page []domain.Transaction
	var token *string
	err := r.read(func(s *memState) error {
		all := matching(s, filter)
		sort.Slice(all, func(i, j int) bool {
			a, b := all[i], all[j]
			k := pagination.Keyset{Date: a.Date, CreatedAt: a.CreatedAt, ID: a.TransactionID}
			return k.After(b.Date, b.CreatedAt, b.TransactionID)
		})
		for _, txn := range all {
			if after != nil && !after.After(txn.Date, txn.CreatedAt, txn.TransactionID) {
				continue
			}
			if len(page) == limit {
				last := page[len(page)-1]
				t := pagination.EncodeToken(pagination.Keyset{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.TransactionID})
				token = &t
				break
			}
			txn.CategoryName = categoryName(s, txn.CategoryID)
			page = append(page, txn)
		}
		return nil
	})
	return page, token, err
}

func (r *repo) FindAllTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.read(func(s *memState) error {
		out = matching(s, filter)
		sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
		return nil
	})
	return out, err
}

func (r *repo) SumTransactions(ctx context.Context, filter domain.TransactionFilter) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.read(func(s *memState) error {
		for _, txn := range s.transactions {
			if filter.Matches(txn) {
				sum = sum.Add(txn.Amount)
			}
		}
		return nil
	})
	return sum, err
}

func (r *repo) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.write("SaveTransaction", func(s *memState) error {
		if _, ok := s.transactions[txn.TransactionID]; ok {
			return fmt.Errorf("transaction %s: %w", txn.TransactionID, apperrors.ErrDuplicate)
		}
		if txn.ExternalID != nil {
			for _, existing := range s.transactions {
				if existing.ExternalID != nil && *existing.ExternalID == *txn.ExternalID {
					return fmt.Errorf("external transaction %s already stored: %w", *txn.ExternalID, apperrors.ErrStorageConflict)
				}
			}
		}
		txn.CategoryName = nil
		s.transactions[txn.TransactionID] = txn
		return nil
	})
}

func (r *repo) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.write("UpdateTransaction", func(s *memState) error {
		if _, ok := s.transactions[txn.TransactionID]; !ok {
			return apperrors.NewNotFoundError("transaction " + txn.TransactionID)
		}
		txn.CategoryName = nil
		s.transactions[txn.TransactionID] = txn
		return nil
	})
}

func (r *repo) DeleteTransactions(ctx context.Context, userID string, transactionIDs []string) (int, error) {
	deleted := 0
	err := r.write("DeleteTransactions", func(s *memState) error {
		for id := range toSet(transactionIDs) {
			if txn, ok := s.transactions[id]; ok && txn.UserID == userID {
				delete(s.transactions, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func matching(s *memState, filter domain.TransactionFilter) []domain.Transaction {
	out := make([]domain.Transaction, 0)
	for _, txn := range s.transactions {
		if filter.Matches(txn) {
			out = append(out, txn)
		}
	}
	return out
}

func categoryName(s *memState, categoryID *string) *string {
	if categoryID == nil {
		return nil
	}
	if c, ok := s.categories[*categoryID]; ok {
		name := c.Name
		return &name
	}
	return nil
}
