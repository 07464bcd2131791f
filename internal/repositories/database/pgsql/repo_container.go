package pgsql

import (
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LinkedAccountRepo: newPgxLinkedAccountRepository(dbPool),
		TransactionRepo:   newPgxTransactionRepository(dbPool),
		CategoryRepo:      newPgxCategoryRepository(dbPool),
		BudgetRepo:        newPgxBudgetRepository(dbPool),
		UnitOfWork:        NewUnitOfWork(dbPool),
	}
}

// txStore hands out repositories bound to one open transaction.
type txStore struct {
	linkedAccounts *PgxLinkedAccountRepository
	transactions   *PgxTransactionRepository
	categories     *PgxCategoryRepository
	budgets        *PgxBudgetRepository
}

func newTxStore(tx pgx.Tx) *txStore {
	return &txStore{
		linkedAccounts: newPgxLinkedAccountRepository(tx),
		transactions:   newPgxTransactionRepository(tx),
		categories:     newPgxCategoryRepository(tx),
		budgets:        newPgxBudgetRepository(tx),
	}
}

var _ portsrepo.LedgerTxStore = (*txStore)(nil)

func (s *txStore) LinkedAccounts() portsrepo.LinkedAccountRepositoryFacade { return s.linkedAccounts }
func (s *txStore) Transactions() portsrepo.TransactionRepositoryFacade     { return s.transactions }
func (s *txStore) Categories() portsrepo.CategoryRepositoryFacade          { return s.categories }
func (s *txStore) Budgets() portsrepo.BudgetRepositoryFacade               { return s.budgets }
