package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/google/uuid"
)

const (
	defaultTransactionPageSize = 20
	maxTransactionPageSize     = 200
)

type transactionService struct {
	BaseService
	ownership    ownershipChecker
	repo         portsrepo.TransactionRepositoryFacade
	uow          portsrepo.UnitOfWork
	recalculator portssvc.AggregateRecalculator
	notifier     portssvc.ChangeNotifier
	now          func() time.Time
}

// NewTransactionService creates the service behind manual transaction edits.
func NewTransactionService(repos portsrepo.RepositoryProvider, recalculator portssvc.AggregateRecalculator, notifier portssvc.ChangeNotifier) portssvc.TransactionSvcFacade {
	return &transactionService{
		ownership:    ownershipChecker{categories: repos.CategoryRepo, linkedAccounts: repos.LinkedAccountRepo},
		repo:         repos.TransactionRepo,
		uow:          repos.UnitOfWork,
		recalculator: recalculator,
		notifier:     notifier,
		now:          time.Now,
	}
}

// ListTransactions implements portssvc.TransactionReaderSvc
func (s *transactionService) ListTransactions(ctx context.Context, identity domain.Identity, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}
	if limit > maxTransactionPageSize {
		limit = maxTransactionPageSize
	}

	filter := domain.TransactionFilter{
		UserID:        identity.UserID,
		CategoryID:    params.CategoryID,
		BankAccountID: params.BankAccountID,
		From:          params.From,
		NameContains:  strings.TrimSpace(params.Search),
	}
	if params.To != nil {
		// "to" names a whole day
		endOfDay := params.To.Add(24*time.Hour - time.Nanosecond)
		filter.To = &endOfDay
	}

	txns, nextToken, err := s.repo.ListTransactions(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, err
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// CreateTransaction implements portssvc.TransactionWriterSvc
func (s *transactionService) CreateTransaction(ctx context.Context, identity domain.Identity, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("transaction name is required")
	}
	if err := s.ownership.checkCategory(ctx, identity, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ownership.checkBankAccount(ctx, identity, req.BankAccountID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        identity.UserID,
		BankAccountID: req.BankAccountID,
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Date:          domain.CalendarDay(req.Date),
		Name:          strings.TrimSpace(req.Name),
		AuditFields:   domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	err := s.write(ctx, identity.UserID, []domain.Transaction{txn}, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		return store.Transactions().SaveTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Transaction created", slog.String("transaction_id", txn.TransactionID))
	return &txn, nil
}

// UpdateTransaction implements portssvc.TransactionWriterSvc
func (s *transactionService) UpdateTransaction(ctx context.Context, identity domain.Identity, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	prev, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if prev.IsRemoved() {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID)
	}
	if err := s.AuthorizeOwner(ctx, identity, prev.UserID, "transaction "+transactionID); err != nil {
		return nil, err
	}

	next := *prev
	next.CategoryName = nil
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.NewValidationError("transaction name cannot be empty")
		}
		next.Name = strings.TrimSpace(*req.Name)
	}
	if req.Amount != nil {
		next.Amount = *req.Amount
	}
	if req.Date != nil {
		next.Date = domain.CalendarDay(*req.Date)
	}
	switch {
	case req.ClearCategory:
		next.CategoryID = nil
	case req.CategoryID != nil:
		if err := s.ownership.checkCategory(ctx, identity, req.CategoryID); err != nil {
			return nil, err
		}
		next.CategoryID = req.CategoryID
	}

	if next.SameContent(*prev) {
		return prev, nil
	}
	next.LastUpdatedAt = s.now().UTC()

	err = s.write(ctx, prev.UserID, []domain.Transaction{*prev, next}, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		return store.Transactions().UpdateTransaction(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// DeleteTransactions implements portssvc.TransactionWriterSvc.
// Only the caller's transactions are deleted; other ids are ignored.
func (s *transactionService) DeleteTransactions(ctx context.Context, identity domain.Identity, req dto.DeleteTransactionsRequest) (int, error) {
	if err := s.RequireUser(identity); err != nil {
		return 0, err
	}
	found, err := s.repo.FindTransactionsByIDs(ctx, req.TransactionIDs)
	if err != nil {
		return 0, err
	}
	owned := make([]domain.Transaction, 0, len(found))
	ids := make([]string, 0, len(found))
	for _, txn := range found {
		if txn.UserID == identity.UserID {
			owned = append(owned, txn)
			ids = append(ids, txn.TransactionID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleted := 0
	err = s.write(ctx, identity.UserID, owned, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		n, err := store.Transactions().DeleteTransactions(ctx, identity.UserID, ids)
		deleted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	s.LogInfo(ctx, "Transactions deleted", slog.Int("count", deleted))
	return deleted, nil
}

// write runs mutate and the recalculation of everything the affected
// transactions feed in one unit of work, then notifies listeners.
func (s *transactionService) write(ctx context.Context, userID string, affected []domain.Transaction, mutate func(ctx context.Context, store portsrepo.LedgerTxStore) error) error {
	touched := newTouchTracker()
	for _, txn := range affected {
		touched.touch(txn)
	}
	set := domain.NewTouchedSet(userID, touched.categories, touched.accounts, touched.uncategorized)

	err := s.uow.RunInTx(ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		if err := mutate(ctx, store); err != nil {
			return err
		}
		if _, err := s.recalculator.Recompute(ctx, store, set); err != nil {
			return fmt.Errorf("recalculating aggregates: %w", err)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to write transactions")
		return err
	}

	if err := s.notifier.NotifyLedgerChanged(ctx, userID); err != nil {
		s.LogError(ctx, err, "Failed to notify ledger change")
	}
	return nil
}
