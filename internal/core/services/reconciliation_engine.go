package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/google/uuid"
)

// reconciliationEngine applies delta pages to local transactions. It keeps no
// state of its own; everything it writes goes through the store it is given,
// so the caller decides the unit of work.
type reconciliationEngine struct {
	BaseService
	now func() time.Time
}

// NewReconciliationEngine creates a reconciliation engine.
func NewReconciliationEngine(opts ...EngineOption) portssvc.ReconciliationEngine {
	e := &reconciliationEngine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EngineOption configures the reconciliation engine.
type EngineOption func(*reconciliationEngine)

// WithEngineClock overrides the clock used for audit timestamps.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *reconciliationEngine) { e.now = now }
}

// touchTracker accumulates the categories and bank accounts whose aggregates
// a page affects.
type touchTracker struct {
	categories    map[string]struct{}
	accounts      map[string]struct{}
	uncategorized bool
}

func newTouchTracker() *touchTracker {
	return &touchTracker{categories: map[string]struct{}{}, accounts: map[string]struct{}{}}
}

func (t *touchTracker) touch(txn domain.Transaction) {
	if txn.CategoryID != nil {
		t.categories[*txn.CategoryID] = struct{}{}
	} else {
		t.uncategorized = true
	}
	if txn.BankAccountID != nil {
		t.accounts[*txn.BankAccountID] = struct{}{}
	}
}

// ApplyDelta upserts added and modified records by external id, tombstones
// removed ones and advances the cursor from expectedCursor to the page's next
// cursor. Upserts run before removals, so a record listed in both ends removed.
func (e *reconciliationEngine) ApplyDelta(ctx context.Context, store portsrepo.LedgerTxStore, account *domain.LinkedAccount, expectedCursor *string, page *domain.DeltaPage) (*domain.ApplyResult, error) {
	if page == nil || page.NextCursor == "" {
		return nil, fmt.Errorf("delta page without next cursor: %w", apperrors.ErrValidation)
	}
	logger := e.GetLogger(ctx).With(slog.String("linked_account_id", account.LinkedAccountID))
	now := e.now().UTC()

	upserts := make([]domain.LedgerTransaction, 0, len(page.Added)+len(page.Modified))
	upserts = append(upserts, page.Added...)
	upserts = append(upserts, page.Modified...)

	removed := make(map[string]struct{}, len(page.Removed))
	externalIDs := make([]string, 0, len(upserts)+len(page.Removed))
	for _, id := range page.Removed {
		removed[id] = struct{}{}
		externalIDs = append(externalIDs, id)
	}
	for _, rec := range upserts {
		externalIDs = append(externalIDs, rec.ExternalID)
	}

	existing, err := store.Transactions().FindTransactionsByExternalIDs(ctx, externalIDs)
	if err != nil {
		return nil, fmt.Errorf("loading existing transactions: %w", err)
	}
	resolver, err := e.newResolver(ctx, store, account, upserts)
	if err != nil {
		return nil, err
	}

	result := &domain.ApplyResult{NextCursor: page.NextCursor}
	touched := newTouchTracker()

	for _, rec := range upserts {
		if _, gone := removed[rec.ExternalID]; gone {
			continue
		}
		if rec.ExternalID == "" {
			return nil, fmt.Errorf("delta record without external id: %w", apperrors.ErrValidation)
		}

		next := resolver.toTransaction(logger, rec)
		prev, found := existing[rec.ExternalID]
		switch {
		case !found:
			next.TransactionID = uuid.NewString()
			next.CreatedAt = now
			next.LastUpdatedAt = now
			if err := store.Transactions().SaveTransaction(ctx, next); err != nil {
				return nil, fmt.Errorf("saving transaction %s: %w", rec.ExternalID, err)
			}
			result.Created++
		case prev.UserID != account.UserID:
			return nil, fmt.Errorf("external transaction %s belongs to another user: %w", rec.ExternalID, apperrors.ErrStorageConflict)
		default:
			next.TransactionID = prev.TransactionID
			next.AuditFields = prev.AuditFields
			touched.touch(prev)
			if prev.SameContent(next) {
				result.Unchanged++
				break
			}
			next.LastUpdatedAt = now
			if err := store.Transactions().UpdateTransaction(ctx, next); err != nil {
				return nil, fmt.Errorf("updating transaction %s: %w", rec.ExternalID, err)
			}
			result.Updated++
		}
		touched.touch(next)
		existing[rec.ExternalID] = next
	}

	for _, externalID := range page.Removed {
		prev, found := existing[externalID]
		if !found {
			continue
		}
		if prev.UserID != account.UserID {
			return nil, fmt.Errorf("external transaction %s belongs to another user: %w", externalID, apperrors.ErrStorageConflict)
		}
		touched.touch(prev)
		if prev.IsRemoved() {
			result.Unchanged++
			continue
		}
		prev.RemovedAt = &now
		prev.LastUpdatedAt = now
		if err := store.Transactions().UpdateTransaction(ctx, prev); err != nil {
			return nil, fmt.Errorf("removing transaction %s: %w", externalID, err)
		}
		existing[externalID] = prev
		result.Removed++
	}

	if err := store.LinkedAccounts().AdvanceCursor(ctx, account.LinkedAccountID, expectedCursor, page.NextCursor, now); err != nil {
		return nil, fmt.Errorf("advancing cursor: %w", err)
	}

	result.Touched = domain.NewTouchedSet(account.UserID, touched.categories, touched.accounts, touched.uncategorized)
	logger.Debug("Delta page applied",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("removed", result.Removed),
		slog.Int("unchanged", result.Unchanged))
	return result, nil
}

// referenceResolver maps provider account and category references onto local ids.
type referenceResolver struct {
	account      *domain.LinkedAccount
	bankAccounts map[string]domain.BankAccount // by provider account id
	byKey        map[string]domain.Category    // by provider category key
	byID         map[string]domain.Category
}

func (e *reconciliationEngine) newResolver(ctx context.Context, store portsrepo.LedgerTxStore, account *domain.LinkedAccount, records []domain.LedgerTransaction) (*referenceResolver, error) {
	var accountIDs, keys, categoryIDs []string
	for _, rec := range records {
		if rec.ExternalAccountID != "" {
			accountIDs = append(accountIDs, rec.ExternalAccountID)
		}
		switch {
		case rec.CategoryID != nil:
			categoryIDs = append(categoryIDs, *rec.CategoryID)
		case rec.CategoryKey != nil:
			keys = append(keys, *rec.CategoryKey)
		}
	}

	r := &referenceResolver{account: account}
	var err error
	if r.bankAccounts, err = store.LinkedAccounts().FindBankAccountsByExternalIDs(ctx, accountIDs); err != nil {
		return nil, fmt.Errorf("resolving bank accounts: %w", err)
	}
	if r.byKey, err = store.Categories().FindCategoriesByExternalKeys(ctx, account.UserID, keys); err != nil {
		return nil, fmt.Errorf("resolving provider categories: %w", err)
	}
	if r.byID, err = store.Categories().FindCategoriesByIDs(ctx, categoryIDs); err != nil {
		return nil, fmt.Errorf("resolving categories: %w", err)
	}
	return r, nil
}

func (r *referenceResolver) toTransaction(logger *slog.Logger, rec domain.LedgerTransaction) domain.Transaction {
	externalID := rec.ExternalID
	txn := domain.Transaction{
		ExternalID: &externalID,
		UserID:     r.account.UserID,
		Amount:     rec.Amount,
		Date:       domain.CalendarDay(rec.Date),
		Name:       rec.Name,
	}

	if ba, ok := r.bankAccounts[rec.ExternalAccountID]; ok && ba.LinkedAccountID == r.account.LinkedAccountID {
		id := ba.BankAccountID
		txn.BankAccountID = &id
	} else if rec.ExternalAccountID != "" {
		logger.Warn("Delta record references an unknown bank account",
			slog.String("external_id", rec.ExternalID),
			slog.String("external_account_id", rec.ExternalAccountID))
	}

	switch {
	case rec.CategoryID != nil:
		if c, ok := r.byID[*rec.CategoryID]; ok && c.UserID == r.account.UserID {
			id := c.CategoryID
			txn.CategoryID = &id
		} else {
			logger.Warn("Delta record references an unknown category",
				slog.String("external_id", rec.ExternalID),
				slog.String("category_id", *rec.CategoryID))
		}
	case rec.CategoryKey != nil:
		if c, ok := r.byKey[*rec.CategoryKey]; ok {
			id := c.CategoryID
			txn.CategoryID = &id
		}
	}
	return txn
}
